package feedparse_test

import (
	"fmt"
	"testing"

	"feedsweep/internal/feedparse"
)

const rssDoc = `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example Blog</title>
  <item>
    <guid isPermaLink="false">post-1</guid>
    <title>First &amp; Foremost</title>
    <link>https://example.com/1</link>
    <description><![CDATA[<p>Rich <b>summary</b></p>]]></description>
    <content:encoded><![CDATA[<article>Full body one</article>]]></content:encoded>
    <author>alice@example.com</author>
    <pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
  </item>
  <item>
    <title>Second Post</title>
    <link>https://example.com/2</link>
    <description>Plain summary</description>
    <dc:creator>bob</dc:creator>
    <dc:date>2006-01-03</dc:date>
  </item>
</channel>
</rss>`

const atomDoc = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Feed</title>
  <entry>
    <id>urn:entry:1</id>
    <title>Atom Entry</title>
    <link rel="alternate" href="https://example.com/atom/1"/>
    <summary>Short note</summary>
    <content type="html">&lt;p&gt;body&lt;/p&gt;</content>
    <author><name>carol</name></author>
    <updated>2006-01-02T15:04:05Z</updated>
  </entry>
  <entry>
    <id>urn:entry:2</id>
    <title>No Author Block</title>
    <link href="https://example.com/atom/2"/>
    <author>dave</author>
    <published>2006-01-04T00:00:00Z</published>
  </entry>
</feed>`

func TestParseItems_RSS(t *testing.T) {
	items := feedparse.ParseItems(rssDoc)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.GUID != "post-1" {
		t.Errorf("guid: got %q", first.GUID)
	}
	if first.Title != "First & Foremost" {
		t.Errorf("title not entity-decoded: got %q", first.Title)
	}
	if first.Link != "https://example.com/1" {
		t.Errorf("link: got %q", first.Link)
	}
	if first.Description != "<p>Rich <b>summary</b></p>" {
		t.Errorf("cdata description: got %q", first.Description)
	}
	if first.Content != "<article>Full body one</article>" {
		t.Errorf("content:encoded: got %q", first.Content)
	}
	if first.Author != "alice@example.com" {
		t.Errorf("author: got %q", first.Author)
	}
	if first.Published != "Mon, 02 Jan 2006 15:04:05 -0700" {
		t.Errorf("published: got %q", first.Published)
	}

	second := items[1]
	if second.GUID != "https://example.com/2" {
		t.Errorf("guid should fall back to link: got %q", second.GUID)
	}
	if second.Description != "Plain summary" {
		t.Errorf("plain description: got %q", second.Description)
	}
	if second.Author != "bob" {
		t.Errorf("author should fall back to dc:creator: got %q", second.Author)
	}
	if second.Published != "2006-01-03" {
		t.Errorf("published should fall back to dc:date: got %q", second.Published)
	}
}

func TestParseItems_RSSDocumentOrder(t *testing.T) {
	doc := "<rss><channel>"
	for i := 0; i < 7; i++ {
		doc += fmt.Sprintf("<item><title>t%d</title><link>https://e.com/%d</link></item>", i, i)
	}
	doc += "</channel></rss>"

	items := feedparse.ParseItems(doc)
	if len(items) != 7 {
		t.Fatalf("expected 7 items, got %d", len(items))
	}
	for i, it := range items {
		if want := fmt.Sprintf("t%d", i); it.Title != want {
			t.Errorf("item %d: got title %q, want %q", i, it.Title, want)
		}
	}
}

func TestParseItems_Atom(t *testing.T) {
	items := feedparse.ParseItems(atomDoc)
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}

	first := items[0]
	if first.GUID != "urn:entry:1" {
		t.Errorf("guid: got %q", first.GUID)
	}
	if first.Link != "https://example.com/atom/1" {
		t.Errorf("link must come from the href attribute: got %q", first.Link)
	}
	if first.Description != "Short note" {
		t.Errorf("summary: got %q", first.Description)
	}
	if first.Author != "carol" {
		t.Errorf("author name: got %q", first.Author)
	}
	if first.Published != "2006-01-02T15:04:05Z" {
		t.Errorf("published should prefer updated: got %q", first.Published)
	}

	if items[1].Author != "dave" {
		t.Errorf("bare author fallback: got %q", items[1].Author)
	}
	if items[1].Published != "2006-01-04T00:00:00Z" {
		t.Errorf("published fallback: got %q", items[1].Published)
	}
}

func TestParseItems_PostFilter(t *testing.T) {
	doc := `<rss><channel>
  <item><link>https://example.com/untitled</link></item>
  <item><title>Neither Link Nor Guid</title><description>x</description></item>
  <item><title>Kept</title><guid>only-guid</guid></item>
</channel></rss>`

	items := feedparse.ParseItems(doc)
	if len(items) != 1 {
		t.Fatalf("expected 1 surviving item, got %d", len(items))
	}
	if items[0].Title != "Kept" {
		t.Errorf("wrong survivor: %q", items[0].Title)
	}
}

func TestParseItems_ClassifiesAtomOnlyWithNamespace(t *testing.T) {
	// "<feed" alone is not enough; without the Atom namespace the document
	// is treated as RSS and yields no items.
	doc := `<feed><entry><title>x</title><link href="https://e.com"/></entry></feed>`
	if items := feedparse.ParseItems(doc); len(items) != 0 {
		t.Errorf("expected 0 items for namespace-less feed, got %d", len(items))
	}
}

func TestParseItems_EmptyAndGarbage(t *testing.T) {
	for _, doc := range []string{"", "not xml at all", "<rss><channel></channel></rss>"} {
		if items := feedparse.ParseItems(doc); len(items) != 0 {
			t.Errorf("ParseItems(%q): expected no items, got %d", doc, len(items))
		}
	}
}
