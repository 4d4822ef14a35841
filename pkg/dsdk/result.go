package dsdk

// Result is the uniform outcome shape for every public SDK operation.
// Failures are reported here, not raised; Error is a user-renderable string.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful Result with an optional user-facing message.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed Result carrying a user-renderable error string.
func Fail(errMsg string) Result {
	return Result{Success: false, Error: errMsg}
}

// LoginResult is a Result plus the authenticated user when login succeeded.
type LoginResult struct {
	Result
	User *User `json:"user,omitempty"`
}

// RegisterResult reports whether the new account still needs email
// confirmation before it can log in.
type RegisterResult struct {
	Result
	PendingConfirmation bool `json:"pending_confirmation,omitempty"`
}
