// Package extract locates the JSON data block embedded in a listing page and
// decodes it into a payload.Value.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/listing-scraper/internal/payload"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

// Comment delimiters wrapped around the embedded JSON.
const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

// Attribute is one name/value pair of the marker signature.
type Attribute struct {
	Name  string
	Value string
}

// Marker identifies the element that embeds the page data.
type Marker struct {
	Tag   string
	Attrs []Attribute
}

// DefaultMarker matches the bootstrap data script on listing pages.
var DefaultMarker = Marker{
	Tag: "script",
	Attrs: []Attribute{
		{Name: "data-hypernova-key", Value: "p3indexbundlejs"},
		{Name: "type", Value: "application/json"},
	},
}

// Extractor pulls the embedded payload out of raw markup.
type Extractor struct {
	marker Marker
}

// New builds an Extractor. A zero marker falls back to DefaultMarker.
func New(marker Marker) *Extractor {
	if marker.Tag == "" {
		marker.Tag = DefaultMarker.Tag
	}
	if len(marker.Attrs) == 0 {
		marker.Attrs = DefaultMarker.Attrs
	}
	return &Extractor{marker: marker}
}

// Extract finds the first marker element in body, strips comment delimiters
// from its text, and decodes the remainder as JSON.
func (e *Extractor) Extract(body []byte) (payload.Value, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return payload.Value{}, scraper.NewError(scraper.KindMarkerNotFound, fmt.Errorf("parse markup: %w", err))
	}

	match := doc.Find(e.marker.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return e.matches(s)
	}).First()
	if match.Length() == 0 {
		return payload.Value{}, scraper.NewError(scraper.KindMarkerNotFound, nil)
	}

	text, ok := firstText(match.Nodes[0])
	if !ok {
		return payload.Value{}, scraper.NewError(scraper.KindMarkerNotFound, fmt.Errorf("%s element has no text", e.marker.Tag))
	}
	raw := StripComments(text)
	value, err := payload.Parse([]byte(raw))
	if err != nil {
		return payload.Value{}, scraper.NewError(scraper.KindMalformedPayload, err)
	}
	return value, nil
}

func (e *Extractor) matches(s *goquery.Selection) bool {
	for _, attr := range e.marker.Attrs {
		val, ok := s.Attr(attr.Name)
		if !ok || val != attr.Value {
			return false
		}
	}
	return true
}

// StripComments removes every occurrence of both comment delimiters, wherever
// they appear in text.
func StripComments(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, commentOpen, ""), commentClose, "")
}

// firstText reports the marker's leading text child. A marker without one
// carries no data block at all.
func firstText(n *html.Node) (string, bool) {
	child := n.FirstChild
	if child == nil || child.Type != html.TextNode {
		return "", false
	}
	return child.Data, true
}
