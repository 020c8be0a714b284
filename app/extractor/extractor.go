// Package extractor turns a fetched HTML document into a normalized content
// record: structural fields (title, headings, paragraphs...) plus the full
// visible text of the page.
package extractor

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Content struct {
	Title           string
	MainHeading     string
	MetaDescription string
	Headings        []Heading
	Paragraphs      []string
	ListItems       []string
	Links           []Link
	// The whole visible text of the page with runs of whitespace collapsed
	// to single spaces.
	Text string
	// Reader-view excerpt, empty when the page has no article-like content.
	Excerpt string
}

// Elements removed before any text extraction. Navigation chrome would
// otherwise pollute paragraphs and the full-text field.
const strippedElements = "script, style, nav, footer, header"

// Minimum trimmed length for a list item to be recorded.
const minListItemLength = 20

// Minimum anchor text length for a link to be recorded.
const minLinkTextLength = 3

var whitespace = regexp.MustCompile(`\s+`)

// Extract reads the content record out of a parsed page. The document is
// modified in place: stripped elements are gone afterwards, so later link
// resolution never sees navigation links either.
func Extract(doc *goquery.Document, pageURL *url.URL, minContentLength int) *Content {
	content := &Content{Excerpt: excerpt(doc, pageURL)}

	doc.Find(strippedElements).Remove()

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	content.MainHeading = strings.TrimSpace(doc.Find("h1").First().Text())

	if description, exists := doc.Find("meta[name=description]").Attr("content"); exists {
		content.MetaDescription = strings.TrimSpace(description)
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, heading *goquery.Selection) {
		text := strings.TrimSpace(heading.Text())
		if text == "" {
			return
		}
		level := int(heading.Nodes[0].Data[1] - '0')
		content.Headings = append(content.Headings, Heading{Level: level, Text: text})
	})

	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > minContentLength {
			content.Paragraphs = append(content.Paragraphs, text)
		}
	})

	doc.Find("ul li, ol li").Each(func(i int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())
		if len(text) > minListItemLength {
			content.ListItems = append(content.ListItems, text)
		}
	})

	doc.Find("a[href]").Each(func(i int, anchor *goquery.Selection) {
		text := strings.TrimSpace(anchor.Text())
		if len(text) > minLinkTextLength {
			href, _ := anchor.Attr("href")
			content.Links = append(content.Links, Link{Text: text, URL: href})
		}
	})

	text := ""
	for _, node := range doc.Selection.Nodes {
		text += getText(node) + " "
	}
	content.Text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	return content
}

// excerpt runs readability over a clone of the document so the original
// node tree stays intact for the structural extraction below.
func excerpt(doc *goquery.Document, pageURL *url.URL) string {
	clone := goquery.CloneDocument(doc)
	article, err := readability.FromDocument(clone.Get(0), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

var nonTextElements = []string{"head", "meta", "script", "style", "noscript", "object", "svg"}

func getText(node *html.Node) string {
	text := ""

	if node.FirstChild != nil {
		if !slices.Contains(nonTextElements, node.Data) {
			text += getText(node.FirstChild) + " "
		}
	}

	if node.Type == html.TextNode {
		text += node.Data + " "
	}

	if node.NextSibling != nil {
		text += getText(node.NextSibling) + " "
	}

	return strings.TrimSpace(text)
}
