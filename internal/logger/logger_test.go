package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want zerolog.Level
	}{
		{name: "debug", in: "debug", want: zerolog.DebugLevel},
		{name: "warn", in: "warn", want: zerolog.WarnLevel},
		{name: "warning alias", in: "warning", want: zerolog.WarnLevel},
		{name: "error", in: "error", want: zerolog.ErrorLevel},
		{name: "err upper", in: "ERR", want: zerolog.ErrorLevel},
		{name: "empty defaults to info", in: "", want: zerolog.InfoLevel},
		{name: "unknown defaults to info", in: "verbose", want: zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("%s: parseLevel(%q)=%v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("STOCKCHAT_TEST_VAR", "val")
	if v := getenv("STOCKCHAT_TEST_VAR", "def"); v != "val" {
		t.Fatalf("getenv returned %q, want 'val'", v)
	}
	if v := getenv("STOCKCHAT_TEST_MISSING", "def"); v != "def" {
		t.Fatalf("getenv returned %q, want 'def'", v)
	}
}

func TestInitAndL(t *testing.T) {
	// Info by default
	_ = os.Unsetenv("LOG_LEVEL")
	_ = os.Unsetenv("LOG_PRETTY")
	Init()
	if L() == nil {
		t.Fatalf("L() returned nil")
	}

	// Set debug level and pretty
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	Init()
	if L().GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", L().GetLevel())
	}
}

// Every line must carry the service identity so stockchat logs can be told
// apart from co-located services.
func TestInit_ServiceFieldOnEveryLine(t *testing.T) {
	_ = os.Unsetenv("LOG_LEVEL")
	_ = os.Unsetenv("LOG_PRETTY")
	Init()

	var buf bytes.Buffer
	lg := L().Output(&buf)
	lg.Info().Str("stock_code", "0148.HK").Msg("processing query")

	line := buf.String()
	if !strings.Contains(line, `"service":"stockchat"`) {
		t.Fatalf("missing service field: %s", line)
	}
	if !strings.Contains(line, `"stock_code":"0148.HK"`) || !strings.Contains(line, "processing query") {
		t.Fatalf("unexpected line: %s", line)
	}
}

// Ensure L() never returns nil and initializes level if not set
func TestLoggerAccessor_NotNil(t *testing.T) {
	// Reset base to zero value to force Init path
	base = zerolog.Logger{}
	lg := L()
	if lg == nil {
		t.Fatalf("logger is nil")
	}
	// After calling L(), the level should not be NoLevel
	if lg.GetLevel() == zerolog.NoLevel {
		t.Fatalf("logger level not initialized")
	}
}
