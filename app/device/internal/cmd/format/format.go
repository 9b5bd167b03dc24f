// Package format implements the CLI's shared --format flag: human,
// json, or yaml rendering of whatever a command has to show.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported output formats.
type OutputFormat int

const (
	Human OutputFormat = iota
	JSON
	YAML
)

func (f OutputFormat) String() string {
	switch f {
	case Human:
		return "human"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// AddFormatFlag adds a standardized --format flag to cmd.
func AddFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "human",
		"output format: human/h/plain/p, json/j, or yaml/y")
}

// GetFormat retrieves and validates the --format flag from cmd.
func GetFormat(cmd *cobra.Command) (OutputFormat, error) {
	formatStr, _ := cmd.Flags().GetString("format")
	return ParseFormat(formatStr)
}

// ParseFormat parses a format string into an OutputFormat.
func ParseFormat(formatStr string) (OutputFormat, error) {
	switch formatStr {
	case "human", "h", "plain", "p", "":
		return Human, nil
	case "json", "j":
		return JSON, nil
	case "yaml", "y":
		return YAML, nil
	default:
		return Human, fmt.Errorf(
			"invalid format %q: valid formats are human/h/plain/p, json/j, yaml/y", formatStr)
	}
}

// Render writes v to w in format f. human renders the Human case; JSON
// and YAML marshal v directly.
func Render(w io.Writer, f OutputFormat, v any, human func(io.Writer, any) error) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return human(w, v)
	}
}
