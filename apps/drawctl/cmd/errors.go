package cmd

import (
	"fmt"
	"log"

	"github.com/yuchia/drawball/pkg/dsdk"
	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

// requireLogin returns a coded error when no session is active, so every
// command that needs authentication shares one guard and one exit message.
func requireLogin(mgr *dsdk.Manager) error {
	if mgr.IsAuthenticated() {
		return nil
	}
	return derr.Newf(derr.CodeUnauthorized, "no active session")
}

// sdkErrorMessage maps coded SDK errors to user-facing guidance.
func sdkErrorMessage(err error) string {
	switch {
	case derr.IsCode(err, derr.CodeUnauthorized):
		return fmt.Sprintf("authentication required: run 'drawctl auth login' (%v)", err)
	case derr.IsCode(err, derr.CodeForbidden):
		return fmt.Sprintf("insufficient permission (%v)", err)
	case derr.IsCode(err, derr.CodeTimeout):
		return fmt.Sprintf("the server did not answer in time, try again later (%v)", err)
	default:
		return err.Error()
	}
}

// exitIfSdkError inspects errors returned from the SDK and emits
// user-friendly guidance before exiting.
func exitIfSdkError(err error) {
	if err == nil {
		return
	}
	log.Fatalf("%s", sdkErrorMessage(err))
}
