package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/canvas/internal/presentation/tui"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// writeResult prints value as JSON or YAML, or renders markdown for text.
func writeResult(w io.Writer, format string, value any, markdown func() string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		out, err := tui.RendererFor(w)(markdown())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (supported: text, json, yaml)", format)
	}
}
