package startup

import (
	"testing"
	"time"
)

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_BOOL_UNSET",
			defaultValue: true,
			want:         true,
			setEnv:       false,
		},
		{
			name:         "Returns default false when env var not set",
			key:          "TEST_BOOL_UNSET2",
			defaultValue: false,
			want:         false,
			setEnv:       false,
		},
		{
			name:         "Returns true when env var is 'true'",
			key:          "TEST_BOOL_TRUE",
			envValue:     "true",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is 'false'",
			key:          "TEST_BOOL_FALSE",
			envValue:     "false",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns true when env var is '1'",
			key:          "TEST_BOOL_ONE",
			envValue:     "1",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is '0'",
			key:          "TEST_BOOL_ZERO",
			envValue:     "0",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns true when env var is 'T'",
			key:          "TEST_BOOL_T_UPPER",
			envValue:     "T",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is 'FALSE'",
			key:          "TEST_BOOL_FALSE_UPPER",
			envValue:     "FALSE",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is invalid",
			key:          "TEST_BOOL_INVALID",
			envValue:     "not-a-bool",
			defaultValue: true,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is 'yes'",
			key:          "TEST_BOOL_YES",
			envValue:     "yes",
			defaultValue: false,
			want:         false,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v (env: %q)", tt.key, tt.defaultValue, got, tt.want, tt.envValue)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue int
		want         int
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_INT_UNSET",
			defaultValue: 5,
			want:         5,
			setEnv:       false,
		},
		{
			name:         "Returns parsed value",
			key:          "TEST_INT_SET",
			envValue:     "42",
			defaultValue: 5,
			want:         42,
			setEnv:       true,
		},
		{
			name:         "Returns default for non-numeric value",
			key:          "TEST_INT_INVALID",
			envValue:     "lots",
			defaultValue: 5,
			want:         5,
			setEnv:       true,
		},
		{
			name:         "Returns default for zero",
			key:          "TEST_INT_ZERO",
			envValue:     "0",
			defaultValue: 5,
			want:         5,
			setEnv:       true,
		},
		{
			name:         "Returns default for negative value",
			key:          "TEST_INT_NEGATIVE",
			envValue:     "-3",
			defaultValue: 5,
			want:         5,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d (env: %q)", tt.key, tt.defaultValue, got, tt.want, tt.envValue)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_DUR_UNSET",
			defaultValue: 3 * time.Second,
			want:         3 * time.Second,
			setEnv:       false,
		},
		{
			name:         "Returns parsed duration",
			key:          "TEST_DUR_SET",
			envValue:     "750ms",
			defaultValue: 3 * time.Second,
			want:         750 * time.Millisecond,
			setEnv:       true,
		},
		{
			name:         "Returns parsed compound duration",
			key:          "TEST_DUR_COMPOUND",
			envValue:     "1m30s",
			defaultValue: 3 * time.Second,
			want:         90 * time.Second,
			setEnv:       true,
		},
		{
			name:         "Returns default for bare number",
			key:          "TEST_DUR_BARE",
			envValue:     "30",
			defaultValue: 3 * time.Second,
			want:         3 * time.Second,
			setEnv:       true,
		},
		{
			name:         "Returns default for negative duration",
			key:          "TEST_DUR_NEGATIVE",
			envValue:     "-5s",
			defaultValue: 3 * time.Second,
			want:         3 * time.Second,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration(%q, %v) = %v, want %v (env: %q)", tt.key, tt.defaultValue, got, tt.want, tt.envValue)
			}
		})
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/resolve", "api/resolve"},
		{"/api/albums", "api/albums"},
		{"/health", "health"},
		{"/version", "version"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := getRouteGroup(tt.path)
			if got != tt.want {
				t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestBuildInfoStruct(t *testing.T) {
	info := BuildInfo{
		Version:   "1.0.0",
		Commit:    "abc123",
		BuildTime: "2026-01-01",
		GoVersion: "go1.25.0",
		OS:        "linux",
		Arch:      "amd64",
	}

	if info.Version != "1.0.0" {
		t.Errorf("Expected Version='1.0.0', got %q", info.Version)
	}

	if info.Commit != "abc123" {
		t.Errorf("Expected Commit='abc123', got %q", info.Commit)
	}

	if info.BuildTime != "2026-01-01" {
		t.Errorf("Expected BuildTime='2026-01-01', got %q", info.BuildTime)
	}

	if info.GoVersion != "go1.25.0" {
		t.Errorf("Expected GoVersion='go1.25.0', got %q", info.GoVersion)
	}

	if info.OS != "linux" {
		t.Errorf("Expected OS='linux', got %q", info.OS)
	}

	if info.Arch != "amd64" {
		t.Errorf("Expected Arch='amd64', got %q", info.Arch)
	}
}

func BenchmarkGetEnv(b *testing.B) {
	b.Setenv("BENCH_TEST_VAR", "test-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = getEnv("BENCH_TEST_VAR", "default")
	}
}

func BenchmarkGetEnvBool(b *testing.B) {
	b.Setenv("BENCH_TEST_BOOL", "true")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = getEnvBool("BENCH_TEST_BOOL", false)
	}
}
