package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/commitpulse/schema"
)

// Color variables for console output.
var (
	UpColor      = color.New(color.FgGreen, color.Bold) // UpColor marks growth and daily cadence.
	DownColor    = color.New(color.FgRed, color.Bold)   // DownColor marks decline and inactivity.
	NeutralColor = color.New(color.FgYellow)            // NeutralColor marks steady or sporadic signals.
	InfoColor    = color.New(color.FgCyan)              // InfoColor marks informational values.
)

// GetColorCadence returns a colored cadence label for console output (table).
func GetColorCadence(c schema.Cadence) string {
	text := string(c)
	switch c {
	case schema.CadenceDaily:
		return UpColor.Sprint(text)
	case schema.CadenceSporadic:
		return NeutralColor.Sprint(text)
	default:
		return DownColor.Sprint(text)
	}
}

// GetColorPulse returns a colored pulse label for console output (table).
func GetColorPulse(l schema.VelocityLabel) string {
	text := string(l)
	switch l {
	case schema.LabelFaster:
		return UpColor.Sprint(text)
	case schema.LabelSlower:
		return DownColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// GetColorCategory returns a colored narrative category for console output (table).
func GetColorCategory(c schema.ShippedCategory) string {
	text := string(c)
	switch c {
	case schema.CategoryFeature:
		return UpColor.Sprint(text)
	case schema.CategoryFix:
		return DownColor.Sprint(text)
	case schema.CategoryRefactor:
		return NeutralColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the statistics and narrative cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".commitpulse_cache.db"
	}
	return filepath.Join(homeDir, ".commitpulse_cache.db")
}

// GetRegistryDBFilePath returns the path to the SQLite DB file for the product registry.
func GetRegistryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".commitpulse_registry.db"
	}
	return filepath.Join(homeDir, ".commitpulse_registry.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
