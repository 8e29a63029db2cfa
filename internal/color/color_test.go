package color

import (
	"strings"
	"testing"
)

func TestMessagesWithColorDisabled(t *testing.T) {
	SetColorOutput(false)
	defer SetColorOutput(true)

	tests := []struct {
		got  string
		want string
	}{
		{SuccessMessage("added '%s'", "web"), "✅ added 'web'"},
		{ErrorMessage("failed: %d", 7), "❌ failed: 7"},
		{InfoText("plain %s", "text"), "plain text"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}

	if Warning("careful") != "careful" {
		t.Error("disabled color should pass text through unchanged")
	}
}

func TestFormatHelpDisabledPassthrough(t *testing.T) {
	SetColorOutput(false)
	defer SetColorOutput(true)

	help := "Examples:\n  sshreg list\n  --format yaml\n"
	if got := FormatHelp(help); got != help {
		t.Errorf("FormatHelp altered text with color disabled:\n%q", got)
	}
}

func TestSetColorOutput(t *testing.T) {
	SetColorOutput(true)
	if !IsColorEnabled() {
		t.Error("color should be enabled after SetColorOutput(true)")
	}
	SetColorOutput(false)
	if IsColorEnabled() {
		t.Error("color should be disabled after SetColorOutput(false)")
	}
	SetColorOutput(true)
}

func TestFormatHelpColorsSections(t *testing.T) {
	SetColorOutput(true)
	defer SetColorOutput(true)

	out := FormatHelp("Examples:\n  sshreg add web\n")
	if !strings.Contains(out, "sshreg add web") {
		t.Error("example line content lost during formatting")
	}
}
