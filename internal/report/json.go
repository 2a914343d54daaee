package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AngelCh415/adperf/internal/models"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ErrUnknownFormat = errors.New("unknown report format")

// Write renders r in the given format.
func Write(w io.Writer, r models.Report, format string) error {
	switch format {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteJSON writes the rounded report as indented JSON.
func WriteJSON(w io.Writer, r models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Rounded(r)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
