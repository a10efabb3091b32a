package app

import (
	"log/slog"
	"testing"
)

func TestDefault_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.LogFormat != DefaultConfigLogFormat {
		t.Fatalf("LogFormat = %q, want %q", cfg.LogFormat, DefaultConfigLogFormat)
	}
	if cfg.Server.Host != DefaultConfigServerHost {
		t.Fatalf("Server.Host = %q, want %q", cfg.Server.Host, DefaultConfigServerHost)
	}
	if cfg.Server.Port != DefaultConfigServerPort {
		t.Fatalf("Server.Port = %d, want %d", cfg.Server.Port, DefaultConfigServerPort)
	}
	if cfg.Shutdown.Timeout != DefaultConfigShutdownTimeout {
		t.Fatalf("Shutdown.Timeout = %v, want %v", cfg.Shutdown.Timeout, DefaultConfigShutdownTimeout)
	}
	if cfg.ServiceName != DefaultConfigServiceName {
		t.Fatalf("ServiceName = %q, want %q", cfg.ServiceName, DefaultConfigServiceName)
	}
	if cfg.ServiceVersion != DefaultConfigServiceVersion {
		t.Fatalf("ServiceVersion = %q, want %q", cfg.ServiceVersion, DefaultConfigServiceVersion)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "custom-llm" {
		t.Fatalf("Models = %v", cfg.Models)
	}
	if cfg.Upstream.BaseURL != "" {
		t.Fatalf("Upstream.BaseURL = %q, want empty (echo mode by default)", cfg.Upstream.BaseURL)
	}
}

func TestApplyDefaults_PreservesSetFields(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		LogFormat: LogFormatJSON,
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
		Models:    []string{"gpt-4", "gpt-3.5"},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Fatalf("Server = %+v", cfg.Server)
	}
	if len(cfg.Models) != 2 {
		t.Fatalf("Models = %v, want 2 entries preserved", cfg.Models)
	}
}

func TestValidate_RejectsBadLogFormat(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate: expected error for unsupported log format")
	}
}

func TestValidate_RejectsEmptyModels(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cfg.Models = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate: expected error for empty models")
	}
}

func TestValidate_RejectsMissingServiceName(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cfg.ServiceName = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate: expected error for missing service name")
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSplitModels(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "custom-llm", []string{"custom-llm"}},
		{"multiple", "gpt-4,gpt-3.5", []string{"gpt-4", "gpt-3.5"}},
		{"whitespace", " gpt-4 , gpt-3.5 ", []string{"gpt-4", "gpt-3.5"}},
		{"empty entries dropped", "gpt-4,,gpt-3.5", []string{"gpt-4", "gpt-3.5"}},
		{"empty string", "", nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SplitModels(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("SplitModels(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("SplitModels(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestConfig_LogLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v, want %v (zero value of slog.Level)", cfg.LogLevel, slog.LevelInfo)
	}
}
