// Package report renders scraper summaries for an output sink.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

const (
	labelWidth  = 25
	placeholder = "n/a"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns the renderer for format.
func New(format string) (scraper.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return TextRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextRenderer writes the human-readable property summary.
type TextRenderer struct{}

// Render formats s and writes it to w in a single call.
func (TextRenderer) Render(w io.Writer, s scraper.Summary) error {
	var buf bytes.Buffer

	header := fmt.Sprintf("\nPROPERTY SUMMARY FOR \"%s\"\n", s.PropertyName)
	buf.WriteString(strings.TrimSuffix(strings.Repeat("* ", utf8.RuneCountInString(header)/2), " "))
	buf.WriteString("\n")
	buf.WriteString(header)
	buf.WriteString("\n")

	writeField(&buf, "Property Type:", s.PropertyType)
	writeField(&buf, "Number of Bedrooms:", s.Rooms)
	writeField(&buf, "Number of Bathrooms:", s.Bathrooms)

	writeSection(&buf, "AMENITIES", s.GeneralAmenities, false)
	writeSection(&buf, "FAMILY AMENITIES", s.FamilyAmenities, true)
	writeSection(&buf, "SAFETY FEATURES", s.SafetyFeatures, true)
	buf.WriteString("\n\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeField(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%-*s %s\n", labelWidth, label, value)
}

// writeSection lists items one per line. Empty sections show the placeholder
// only when fill is set; general amenities are left blank.
func writeSection(buf *bytes.Buffer, title string, items []string, fill bool) {
	fmt.Fprintf(buf, "\n%s:\n", title)
	if len(items) == 0 && fill {
		items = []string{placeholder}
	}
	for _, item := range items {
		fmt.Fprintf(buf, " *  %s\n", item)
	}
}

// JSONRenderer writes one JSON object per summary (JSON lines).
type JSONRenderer struct{}

// Render encodes s as a single line.
func (JSONRenderer) Render(w io.Writer, s scraper.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
