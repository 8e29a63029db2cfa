// Package color centralizes terminal color formatting for user-facing
// status output.
package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	colorOutput = true

	headerColor  = color.New(color.Bold, color.FgBlue)
	exampleColor = color.New(color.FgGreen)
	flagColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		SetColorOutput(false)
	}
}

// SetColorOutput enables or disables color output.
func SetColorOutput(enabled bool) {
	colorOutput = enabled
	color.NoColor = !enabled
}

// IsColorEnabled returns true if color output is enabled.
func IsColorEnabled() bool {
	return colorOutput && !color.NoColor
}

// Success formats text as a success message (green).
func Success(text string) string {
	if !IsColorEnabled() {
		return text
	}
	return successColor.Sprint(text)
}

// Error formats text as an error message (red).
func Error(text string) string {
	if !IsColorEnabled() {
		return text
	}
	return errorColor.Sprint(text)
}

// Warning formats text as a warning message (yellow).
func Warning(text string) string {
	if !IsColorEnabled() {
		return text
	}
	return warningColor.Sprint(text)
}

// Info formats text as an info message (blue).
func Info(text string) string {
	if !IsColorEnabled() {
		return text
	}
	return infoColor.Sprint(text)
}

// SuccessMessage formats a ✅-prefixed status line.
func SuccessMessage(format string, args ...interface{}) string {
	return "✅ " + Success(fmt.Sprintf(format, args...))
}

// ErrorMessage formats a ❌-prefixed status line.
func ErrorMessage(format string, args ...interface{}) string {
	return "❌ " + Error(fmt.Sprintf(format, args...))
}

// WarningMessage formats a ⚠️-prefixed status line.
func WarningMessage(format string, args ...interface{}) string {
	return "⚠️  " + Warning(fmt.Sprintf(format, args...))
}

// InfoMessage formats an ℹ️-prefixed status line.
func InfoMessage(format string, args ...interface{}) string {
	return "ℹ️  " + Info(fmt.Sprintf(format, args...))
}

// InfoText formats a plain informational line without a prefix.
func InfoText(format string, args ...interface{}) string {
	return Info(fmt.Sprintf(format, args...))
}

// FormatHelp enhances cobra help text: section headers, example command
// lines and flags each get their own color.
func FormatHelp(helpText string) string {
	if !IsColorEnabled() {
		return helpText
	}

	lines := strings.Split(helpText, "\n")
	formatted := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasSuffix(strings.TrimSpace(line), ":") && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t"):
			formatted = append(formatted, headerColor.Sprint(line))
		case (strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t")) && strings.Contains(line, "sshreg"):
			formatted = append(formatted, exampleColor.Sprint(line))
		case strings.Contains(line, "--"):
			out := line
			for _, word := range strings.Fields(line) {
				if strings.HasPrefix(word, "-") {
					out = strings.ReplaceAll(out, word, flagColor.Sprint(word))
				}
			}
			formatted = append(formatted, out)
		default:
			formatted = append(formatted, line)
		}
	}

	return strings.Join(formatted, "\n")
}
