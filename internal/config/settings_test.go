package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "evlease") {
		t.Errorf("GetConfigDir() = %v, should contain 'evlease'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDirHonoursXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "evlease"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("NewSettings().Version = %v, want 1", s.Version)
	}

	if s.Advisor.Model != "gemini-3-flash-preview" {
		t.Errorf("Advisor.Model = %v, want gemini-3-flash-preview", s.Advisor.Model)
	}
	if s.Advisor.APIKeyEnv != "API_KEY" {
		t.Errorf("Advisor.APIKeyEnv = %v, want API_KEY", s.Advisor.APIKeyEnv)
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"return_processing", s.Timings.ReturnProcessing, 4000},
		{"payment_authorizing", s.Timings.PaymentAuthorizing, 2000},
		{"payment_confirmed", s.Timings.PaymentConfirmed, 2000},
		{"survey_delay", s.Timings.SurveyDelay, 600},
		{"days_left", s.Lease.DaysLeft, 70},
		{"allowed_mileage", s.Lease.AllowedMileage, 30000},
		{"term_months", s.Lease.TermMonths, 36},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if !s.Telemetry.AutoDiscover {
		t.Error("Telemetry.AutoDiscover should be true by default")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := NewSettings()
	s.Lease.DaysLeft = 12
	s.Vehicle.Name = "Test Car"
	s.Telemetry.URL = "ws://127.0.0.1:8787/telemetry"

	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after SaveFile()")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# evlease Configuration File") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if loaded.Lease.DaysLeft != 12 {
		t.Errorf("Lease.DaysLeft = %v, want 12", loaded.Lease.DaysLeft)
	}
	if loaded.Vehicle.Name != "Test Car" {
		t.Errorf("Vehicle.Name = %v, want 'Test Car'", loaded.Vehicle.Name)
	}
	if loaded.Telemetry.URL != "ws://127.0.0.1:8787/telemetry" {
		t.Errorf("Telemetry.URL = %v", loaded.Telemetry.URL)
	}
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if s.Lease.DaysLeft != 70 {
		t.Errorf("Lease.DaysLeft = %v, want 70", s.Lease.DaysLeft)
	}
}

func TestLoadFilePartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nlease:\n  days_left: 0\n  allowed_mileage: 10000\n  current_mileage: 9500\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if s.Lease.DaysLeft != 0 {
		t.Errorf("Lease.DaysLeft = %v, want 0", s.Lease.DaysLeft)
	}
	if s.Timings == nil || s.Timings.ReturnProcessing != 4000 {
		t.Error("missing timings section should be filled with defaults")
	}
	if s.Advisor == nil || s.Advisor.Endpoint == "" {
		t.Error("missing advisor section should be filled with defaults")
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"missing version", "lease:\n  days_left: 3\n"},
		{"negative timing", "version: 1\ntimings:\n  return_processing: -1\n"},
		{"negative mileage", "version: 1\nlease:\n  allowed_mileage: -5\n"},
		{"malformed yaml", "version: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() expected error, got nil")
			}
		})
	}
}

func TestAdvisorAPIKey(t *testing.T) {
	a := &Advisor{APIKeyEnv: "EVLEASE_TEST_KEY"}

	t.Setenv("EVLEASE_TEST_KEY", "")
	if got := a.APIKey(); got != "" {
		t.Errorf("APIKey() = %q, want empty", got)
	}

	t.Setenv("EVLEASE_TEST_KEY", "secret")
	if got := a.APIKey(); got != "secret" {
		t.Errorf("APIKey() = %q, want secret", got)
	}

	var nilAdvisor *Advisor
	if got := nilAdvisor.APIKey(); got != "" {
		t.Errorf("nil APIKey() = %q, want empty", got)
	}
}

func TestAdvisorTimeout(t *testing.T) {
	if got := (&Advisor{TimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", got)
	}
	if got := (&Advisor{}).Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s default", got)
	}
}

func TestTimingsScaled(t *testing.T) {
	base := defaultTimings()

	fast := base.Scaled(4)
	if fast.ReturnProcessing != 1000 {
		t.Errorf("Scaled(4).ReturnProcessing = %v, want 1000", fast.ReturnProcessing)
	}
	if fast.SurveyDelay != 150 {
		t.Errorf("Scaled(4).SurveyDelay = %v, want 150", fast.SurveyDelay)
	}

	same := base.Scaled(0.5)
	if same.PaymentAuthorizing != 2000 {
		t.Errorf("Scaled(0.5).PaymentAuthorizing = %v, want 2000", same.PaymentAuthorizing)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
