package cmd

import (
	"fmt"
	"io"

	"github.com/probeops/dualwatch/internal/cmd/output"
)

const defaultIndentSpaces = 2

// FormatHandler returns the output handler for the requested format.
// An unset format falls back to text, rendered via render.
func FormatHandler[T any](w io.Writer, format OutputFormat, render output.RenderFunc[T]) (output.Handler[T], error) {
	switch format {
	case FormatJSON:
		return output.NewJSONHandler[T](w, defaultIndentSpaces), nil
	case FormatYAML:
		return output.NewYAMLHandler[T](w, defaultIndentSpaces), nil
	case FormatText, "":
		return output.NewTextHandler[T](w, render), nil
	default:
		allowed := AllowedOutputFormats()
		return nil, fmt.Errorf("unsupported output format %q, allowed: %s", format, allowed.String())
	}
}
