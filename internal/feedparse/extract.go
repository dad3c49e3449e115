// Package feedparse implements best-effort extraction of article items from
// RSS 2.0 and Atom documents. Feeds in the wild are frequently not
// well-formed XML, so fields are pulled out with tolerant regular
// expressions: a malformed or missing element yields an empty string, never
// an error.
package feedparse

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRexMu sync.Mutex
	tagRex   = map[string]*regexp.Regexp{}

	cdataRex = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

	// Entity order matters: &amp; must come last so that already-encoded
	// sequences like &amp;lt; decode to &lt; in a single pass instead of
	// collapsing all the way to <.
	entityReplacer = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#039;", "'",
		"&apos;", "'",
		"&amp;", "&",
	)
)

func tagPattern(tag string) *regexp.Regexp {
	tagRexMu.Lock()
	defer tagRexMu.Unlock()
	if re, ok := tagRex[tag]; ok {
		return re
	}
	q := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(`(?is)<` + q + `(?:\s[^>]*)?>(.*?)</` + q + `>`)
	tagRex[tag] = re
	return re
}

// ExtractTag returns the trimmed inner text of the first case-insensitive
// occurrence of the element, ignoring attributes on the opening tag. Missing
// or unterminated elements yield "".
func ExtractTag(doc, tag string) string {
	m := tagPattern(tag).FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractCDATA returns the CDATA payload of the first occurrence of the
// element. An element without a CDATA wrapper yields "".
func ExtractCDATA(doc, tag string) string {
	m := tagPattern(tag).FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	c := cdataRex.FindStringSubmatch(m[1])
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c[1])
}

// DecodeEntities reverses the five common XML entities in one pass. Double
// encoded input decodes exactly one level: "&amp;lt;" becomes "&lt;".
func DecodeEntities(text string) string {
	return entityReplacer.Replace(text)
}

// StripMarkup drops all tags from an HTML fragment and collapses whitespace
// runs to single spaces. The underlying net/html parser accepts any input,
// so malformed markup degrades to whatever text is recoverable.
func StripMarkup(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
