package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Usage trend label constants.
const (
	RisingValue  = "Rising"
	FallingValue = "Falling"
	FlatValue    = "Flat"
	NoDataValue  = "No data"
)

// Color variables for console output.
var (
	RisingColor  = color.New(color.FgRed, color.Bold) // consumption going up
	FallingColor = color.New(color.FgGreen)           // consumption going down
	FlatColor    = color.New(color.FgYellow)          // no change across the window
	NoDataColor  = color.New(color.FgCyan)            // insufficient data
)

// GetPlainTrendLabel returns a plain text label for a usage delta. This is
// the core logic used for CSV and JSON printing.
func GetPlainTrendLabel(usage float64, insufficient bool) string {
	switch {
	case insufficient:
		return NoDataValue
	case usage > 0:
		return RisingValue
	case usage < 0:
		return FallingValue
	default:
		return FlatValue
	}
}

// GetColorTrendLabel returns a colored label for console table output.
func GetColorTrendLabel(usage float64, insufficient bool) string {
	text := GetPlainTrendLabel(usage, insufficient)

	switch text {
	case RisingValue:
		return RisingColor.Sprint(text)
	case FallingValue:
		return FallingColor.Sprint(text)
	case FlatValue:
		return FlatColor.Sprint(text)
	default:
		return NoDataColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateKey shortens a storage key for table display, keeping the tail
// which carries the date and hour components.
func TruncateKey(key string, maxWidth int) string {
	if len(key) <= maxWidth {
		return key
	}
	if maxWidth <= 3 {
		return key[len(key)-maxWidth:]
	}
	return "..." + key[len(key)-(maxWidth-3):]
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
