package feedparse

import (
	"regexp"
	"strings"

	"feedsweep/domain"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

var (
	rssItemRex   = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item>`)
	atomEntryRex = regexp.MustCompile(`(?is)<entry(?:\s[^>]*)?>(.*?)</entry>`)
	atomHrefRex  = regexp.MustCompile(`(?is)<link[^>]*?href\s*=\s*["']([^"']*)["']`)
)

// format is one feed dialect. The dialect is selected once per document, not
// per field.
type format interface {
	blocks(doc string) []string
	item(block string) domain.RawItem
}

// ParseItems extracts all article items from a raw feed document, in document
// order. Items without a title, or with neither a link nor a guid, are
// dropped: they can be neither deduplicated nor displayed.
func ParseItems(raw string) []domain.RawItem {
	f := detect(raw)
	blocks := f.blocks(raw)
	items := make([]domain.RawItem, 0, len(blocks))
	for _, b := range blocks {
		it := f.item(b)
		if it.Title == "" {
			continue
		}
		if it.Link == "" && it.GUID == "" {
			continue
		}
		items = append(items, it)
	}
	return items
}

func detect(doc string) format {
	if strings.Contains(doc, "<feed") && strings.Contains(doc, atomNamespace) {
		return atomFormat{}
	}
	return rssFormat{}
}

type rssFormat struct{}

func (rssFormat) blocks(doc string) []string { return innerBlocks(rssItemRex, doc) }

func (rssFormat) item(block string) domain.RawItem {
	guid := ExtractTag(block, "guid")
	link := ExtractTag(block, "link")
	if guid == "" {
		guid = link
	}
	author := ExtractTag(block, "author")
	if author == "" {
		author = ExtractTag(block, "dc:creator")
	}
	published := ExtractTag(block, "pubDate")
	if published == "" {
		published = ExtractTag(block, "dc:date")
	}
	return domain.RawItem{
		GUID:        guid,
		Title:       DecodeEntities(ExtractTag(block, "title")),
		Link:        link,
		Description: cdataOrPlain(block, "description"),
		Content:     cdataOrPlain(block, "content:encoded"),
		Author:      author,
		Published:   published,
	}
}

type atomFormat struct{}

func (atomFormat) blocks(doc string) []string { return innerBlocks(atomEntryRex, doc) }

func (atomFormat) item(block string) domain.RawItem {
	var link string
	if m := atomHrefRex.FindStringSubmatch(block); m != nil {
		link = m[1]
	}
	authorBlock := ExtractTag(block, "author")
	author := ExtractTag(authorBlock, "name")
	if author == "" {
		author = authorBlock
	}
	published := ExtractTag(block, "updated")
	if published == "" {
		published = ExtractTag(block, "published")
	}
	return domain.RawItem{
		GUID:        ExtractTag(block, "id"),
		Title:       DecodeEntities(ExtractTag(block, "title")),
		Link:        link,
		Description: ExtractTag(block, "summary"),
		Content:     ExtractTag(block, "content"),
		Author:      author,
		Published:   published,
	}
}

func cdataOrPlain(block, tag string) string {
	if v := ExtractCDATA(block, tag); v != "" {
		return v
	}
	return ExtractTag(block, tag)
}

func innerBlocks(re *regexp.Regexp, doc string) []string {
	ms := re.FindAllStringSubmatch(doc, -1)
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m[1])
	}
	return out
}
