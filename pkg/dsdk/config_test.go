package dsdk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ProjectConfig(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	projectConfig := `
supabaseUrl: https://abc.supabase.co
supabaseKey: anon-key
`
	os.WriteFile("drawball.yaml", []byte(projectConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SupabaseURL != "https://abc.supabase.co" {
		t.Errorf("Expected supabaseUrl https://abc.supabase.co, got %s", cfg.SupabaseURL)
	}
	if cfg.SupabaseKey != "anon-key" {
		t.Errorf("Expected supabaseKey anon-key, got %s", cfg.SupabaseKey)
	}
	// A hosted URL means confirmation enforcement stays on.
	if cfg.DevMode {
		t.Error("Expected devMode false for a non-local URL")
	}
}

func TestLoadConfig_LocalOverride(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	projectConfig := `
supabaseUrl: https://abc.supabase.co
`
	os.WriteFile("drawball.yaml", []byte(projectConfig), 0644)

	os.MkdirAll(ConfigRoot, 0755)
	localConfig := `
supabaseUrl: http://localhost:54321
supabaseKey: local-key
`
	os.WriteFile(filepath.Join(ConfigRoot, "config.yaml"), []byte(localConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Local override should win
	if cfg.SupabaseURL != "http://localhost:54321" {
		t.Errorf("Expected supabaseUrl http://localhost:54321 (from local override), got %s", cfg.SupabaseURL)
	}
	if cfg.SupabaseKey != "local-key" {
		t.Errorf("Expected supabaseKey local-key, got %s", cfg.SupabaseKey)
	}
	if !cfg.DevMode {
		t.Error("Expected devMode true for a localhost URL")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SupabaseURL != "http://localhost:54321" {
		t.Errorf("Expected default supabaseUrl http://localhost:54321, got %s", cfg.SupabaseURL)
	}
	if cfg.RedirectURL != "http://localhost:5173/#/reset-password" {
		t.Errorf("Expected default redirectUrl, got %s", cfg.RedirectURL)
	}
	if !cfg.DevMode {
		t.Error("Expected devMode true when defaulting to a local URL")
	}
}

func TestLoadConfig_TrailingSlashNormalized(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	os.WriteFile("drawball.yaml", []byte("supabaseUrl: https://abc.supabase.co/\n"), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SupabaseURL != "https://abc.supabase.co" {
		t.Errorf("Expected trailing slash stripped, got %s", cfg.SupabaseURL)
	}
	if cfg.AuthURL() != "https://abc.supabase.co/auth/v1" {
		t.Errorf("Unexpected auth URL: %s", cfg.AuthURL())
	}
	if cfg.RestURL() != "https://abc.supabase.co/rest/v1" {
		t.Errorf("Unexpected rest URL: %s", cfg.RestURL())
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	customConfig := `
supabaseUrl: https://staging.supabase.co
devMode: true
`
	customPath := filepath.Join(tempDir, "custom-config.yaml")
	os.WriteFile(customPath, []byte(customConfig), 0644)

	cfg, err := LoadConfig(customPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SupabaseURL != "https://staging.supabase.co" {
		t.Errorf("Expected supabaseUrl https://staging.supabase.co, got %s", cfg.SupabaseURL)
	}
	// Explicit devMode wins over the URL heuristic.
	if !cfg.DevMode {
		t.Error("Expected devMode true from explicit setting")
	}
}
