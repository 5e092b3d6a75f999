package console

import (
	"os"
	"testing"

	"github.com/creack/pty"
)

func TestColorEnabledOnTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	t.Run("terminal with NO_COLOR unset", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		if !ColorEnabled(tty) {
			t.Error("Expected color on a terminal when NO_COLOR is empty")
		}
	})

	t.Run("empty NO_COLOR does not disable", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		if !ColorEnabled(tty) {
			t.Error("Expected empty NO_COLOR to leave color enabled")
		}
	})

	t.Run("non-empty NO_COLOR disables on terminal", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		if ColorEnabled(tty) {
			t.Error("Expected non-empty NO_COLOR to disable color even on a terminal")
		}
	})
}

func TestColorEnabledOnPipe(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if ColorEnabled(w) {
		t.Error("Expected no color on a pipe destination")
	}
}

func TestColorEnabledNilDestination(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if ColorEnabled(nil) {
		t.Error("Expected no color for a nil destination")
	}
}
