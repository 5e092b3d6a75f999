package telemetry

import (
	"testing"
	"time"
)

func TestNewCorrelationContext(t *testing.T) {
	before := time.Now()
	ctx := NewCorrelationContext()

	if ctx.ID == "" {
		t.Error("Expected non-empty correlation id")
	}
	if ctx.Start.Before(before.Add(-time.Second)) {
		t.Errorf("Expected recent start timestamp, got: %v", ctx.Start)
	}

	other := NewCorrelationContext()
	if other.ID == ctx.ID {
		t.Error("Expected distinct ids across invocations")
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"unset disables", "", false},
		{"any value enables", "1", true},
		{"word value enables", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FMLINT_STRUCTURED_LOGS", tt.value)
			if got := Enabled(); got != tt.expected {
				t.Errorf("Enabled() with %q = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestLoggerReuse(t *testing.T) {
	first := Logger()
	second := Logger()
	if first == nil {
		t.Fatal("Logger returned nil")
	}
	if first != second {
		t.Error("Expected the same logger instance across calls")
	}
}
