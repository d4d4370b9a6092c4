package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_INT_VAR_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when environment variable is not a valid integer",
			key:          "TEST_INT_VAR_INVALID",
			defaultValue: 100,
			envValue:     "not_a_number",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "handles negative integers",
			key:          "TEST_INT_VAR_NEGATIVE",
			defaultValue: 100,
			envValue:     "-50",
			shouldSet:    true,
			want:         -50,
		},
		{
			name:         "handles zero",
			key:          "TEST_INT_VAR_ZERO",
			defaultValue: 100,
			envValue:     "0",
			shouldSet:    true,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue float64
		envValue     string
		shouldSet    bool
		want         float64
	}{
		{
			name:         "returns environment variable as float when set",
			key:          "TEST_FLOAT_VAR",
			defaultValue: 5,
			envValue:     "2.5",
			shouldSet:    true,
			want:         2.5,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_FLOAT_VAR_MISSING",
			defaultValue: 5,
			envValue:     "",
			shouldSet:    false,
			want:         5,
		},
		{
			name:         "returns default when environment variable is not a valid float",
			key:          "TEST_FLOAT_VAR_INVALID",
			defaultValue: 5,
			envValue:     "fast",
			shouldSet:    true,
			want:         5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsFloat(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		port        string
		setBaseURL  bool
		setPort     bool
		wantBaseURL string
		wantPort    string
	}{
		{
			name:        "returns default values when no environment variables set",
			baseURL:     "",
			port:        "",
			setBaseURL:  false,
			setPort:     false,
			wantBaseURL: "https://chat-rank-api.amionai.com",
			wantPort:    "8001",
		},
		{
			name:        "returns custom UPSTREAM_BASE_URL when set",
			baseURL:     "https://tables.staging.example.com",
			port:        "",
			setBaseURL:  true,
			setPort:     false,
			wantBaseURL: "https://tables.staging.example.com",
			wantPort:    "8001",
		},
		{
			name:        "returns custom PORT when set",
			baseURL:     "",
			port:        "3000",
			setBaseURL:  false,
			setPort:     true,
			wantBaseURL: "https://chat-rank-api.amionai.com",
			wantPort:    "3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// API_KEY is required for Load() to succeed
			t.Setenv("API_KEY", "test-api-key")

			if tt.setBaseURL {
				t.Setenv("UPSTREAM_BASE_URL", tt.baseURL)
			}
			if tt.setPort {
				t.Setenv("PORT", tt.port)
			}

			cfg, err := Load()
			if err != nil {
				t.Errorf("Load() error = %v, want nil", err)
				return
			}

			if cfg.UpstreamBaseURL != tt.wantBaseURL {
				t.Errorf("Load() UpstreamBaseURL = %v, want %v", cfg.UpstreamBaseURL, tt.wantBaseURL)
			}

			if cfg.Port != tt.wantPort {
				t.Errorf("Load() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
		})
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() error = nil, want error when API_KEY is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetRecordCount != 10000 {
		t.Errorf("TargetRecordCount = %d, want 10000", cfg.TargetRecordCount)
	}
	if cfg.PageSize != 500 {
		t.Errorf("PageSize = %d, want 500", cfg.PageSize)
	}
	if cfg.GroupBy != "none" {
		t.Errorf("GroupBy = %q, want \"none\"", cfg.GroupBy)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir = %q, want \"output\"", cfg.OutputDir)
	}
	if cfg.OutputBasename != "" {
		t.Errorf("OutputBasename = %q, want empty", cfg.OutputBasename)
	}
	if cfg.UpstreamTimeout != 120*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 2m0s", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamRetryMax != 1 {
		t.Errorf("UpstreamRetryMax = %d, want 1", cfg.UpstreamRetryMax)
	}
	if cfg.FetchRateLimit != 5 {
		t.Errorf("FetchRateLimit = %v, want 5", cfg.FetchRateLimit)
	}
	if cfg.SourcesConcurrency != 4 {
		t.Errorf("SourcesConcurrency = %d, want 4", cfg.SourcesConcurrency)
	}
	if cfg.StaticDir != "." {
		t.Errorf("StaticDir = %q, want \".\"", cfg.StaticDir)
	}
	if cfg.S3Enabled() {
		t.Error("S3Enabled() = true, want false without S3 settings")
	}
}

func TestLoad_GroupBy(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	t.Run("customer is accepted", func(t *testing.T) {
		t.Setenv("GROUP_BY", "customer")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.GroupBy != "customer" {
			t.Errorf("GroupBy = %q, want \"customer\"", cfg.GroupBy)
		}
	})

	t.Run("unknown dimension is rejected", func(t *testing.T) {
		t.Setenv("GROUP_BY", "region")
		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for unknown GROUP_BY")
		}
	})
}

func TestLoad_TargetRecordCount(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	t.Run("override via TARGET_RECORD_COUNT", func(t *testing.T) {
		t.Setenv("TARGET_RECORD_COUNT", "250")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.TargetRecordCount != 250 {
			t.Errorf("TargetRecordCount = %d, want 250", cfg.TargetRecordCount)
		}
	})

	t.Run("validation error when <= 0", func(t *testing.T) {
		t.Setenv("TARGET_RECORD_COUNT", "0")
		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for TARGET_RECORD_COUNT <= 0")
		}
	})

	t.Run("non-numeric falls back to default", func(t *testing.T) {
		t.Setenv("TARGET_RECORD_COUNT", "many")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.TargetRecordCount != 10000 {
			t.Errorf("TargetRecordCount = %d, want default 10000", cfg.TargetRecordCount)
		}
	})
}

func TestLoad_S3Enabled(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")
	t.Setenv("S3_ENDPOINT", "minio.internal:9000")
	t.Setenv("S3_BUCKET", "correlation-artifacts")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.S3Enabled() {
		t.Error("S3Enabled() = false, want true with endpoint and bucket set")
	}
	if cfg.S3Region != "us-east-1" {
		t.Errorf("S3Region = %q, want default us-east-1", cfg.S3Region)
	}
	if !cfg.S3UseSSL {
		t.Error("S3UseSSL = false, want default true")
	}
}
