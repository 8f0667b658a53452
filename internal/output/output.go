// Package output renders boards, tasks and summaries for the terminal and
// for scripts.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvFormat selects the format when no output flag is given.
const EnvFormat = "LANEBOARD_OUTPUT"

// Format is an output rendering.
type Format int

// Formats. FormatAuto resolves to FormatTable.
const (
	FormatAuto Format = iota
	FormatJSON
	FormatTable
	FormatCompact
)

var formatNames = map[string]Format{
	"json":    FormatJSON,
	"table":   FormatTable,
	"compact": FormatCompact,
	"oneline": FormatCompact,
}

// ParseFormat maps a format name, case-insensitively, to a Format.
func ParseFormat(name string) (Format, bool) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCompact:
		return "compact"
	case FormatTable:
		return "table"
	default:
		return "auto"
	}
}

// Detect picks the format from the output flags, then from EnvFormat.
// Flag precedence is json, compact, table.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}
	if f, ok := ParseFormat(os.Getenv(EnvFormat)); ok {
		return f
	}
	return FormatTable
}

// Messagef prints one status line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
