package importer

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/pders01/nearby/internal/storage"
)

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parsed is the outcome of reading one feed.
type Parsed struct {
	Title   string
	Places  []*storage.Place
	Skipped int
}

// Parse turns feed items into places. Items without a title are skipped.
// Coordinates come from georss:point or geo:lat/geo:long when present.
func (p *Parser) Parse(reader io.Reader, source string) (*Parsed, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	out := &Parsed{
		Title:  strings.TrimSpace(feed.Title),
		Places: make([]*storage.Place, 0, len(feed.Items)),
	}
	now := time.Now()
	for _, item := range feed.Items {
		name := strings.TrimSpace(item.Title)
		if name == "" {
			out.Skipped++
			continue
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		place := &storage.Place{
			ID:        generateID(source, item),
			Name:      name,
			Website:   item.Link,
			Notes:     toMarkdown(body),
			Address:   extractAddress(body),
			UpdatedAt: now,
		}
		if len(item.Categories) > 0 {
			place.Category = strings.TrimSpace(item.Categories[0])
		}
		if lat, lon, ok := coordinates(item); ok {
			place.Lat, place.Lon = lat, lon
		}
		if place.Address == "" {
			place.Address = extensionValue(item, "georss", "featurename")
		}

		out.Places = append(out.Places, place)
	}

	return out, nil
}

func coordinates(item *gofeed.Item) (float64, float64, bool) {
	if point := extensionValue(item, "georss", "point"); point != "" {
		fields := strings.Fields(point)
		if len(fields) == 2 {
			lat, errLat := strconv.ParseFloat(fields[0], 64)
			lon, errLon := strconv.ParseFloat(fields[1], 64)
			if errLat == nil && errLon == nil && validCoords(lat, lon) {
				return lat, lon, true
			}
		}
	}

	latStr := extensionValue(item, "geo", "lat")
	lonStr := extensionValue(item, "geo", "long")
	if latStr != "" && lonStr != "" {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if errLat == nil && errLon == nil && validCoords(lat, lon) {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func extensionValue(item *gofeed.Item, namespace, name string) string {
	if item.Extensions == nil {
		return ""
	}
	for ns, elems := range item.Extensions {
		if !strings.EqualFold(ns, namespace) {
			continue
		}
		for elemName, values := range elems {
			if strings.EqualFold(elemName, name) && len(values) > 0 {
				return strings.TrimSpace(values[0].Value)
			}
		}
	}
	return ""
}

// toMarkdown converts an item body for the detail view. Conversion errors
// fall back to the plain text of the HTML.
func toMarkdown(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return plainText(body)
	}
	return strings.TrimSpace(md)
}

// extractAddress returns the text of the first <address> element in body.
func extractAddress(body string) string {
	if !strings.Contains(strings.ToLower(body), "<address") {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if n := findElement(doc, "address"); n != nil {
		return collapseSpace(textContent(n))
	}
	return ""
}

func plainText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}
	return collapseSpace(textContent(doc))
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// generateID is stable across imports of the same item.
func generateID(source string, item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	sum := sha256.Sum256([]byte(source + "\x00" + key))
	return fmt.Sprintf("%s%x", storage.ImportedPrefix, sum[:8])
}
