package crawl

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Page is the content captured from one crawled URL.
type Page struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headings        []Heading `json:"headings"`
	Paragraphs      []string  `json:"paragraphs"`
	Images          []Image   `json:"images"`
	InternalLinks   []Link    `json:"internal_links"`
	ExternalLinks   []Link    `json:"external_links"`
	Markdown        string    `json:"markdown,omitempty"`
}

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Backlink records a page linking to another.
type Backlink struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// Normalize drops the query and fragment and any trailing slash, so
// "https://x.com/a/?q#f" and "https://x.com/a" name the same page.
func Normalize(u *url.URL) string {
	return strings.TrimRight(fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path), "/")
}

// sameSite reports whether u is a web page on host. Hostless URLs count as
// local; mailto:, tel: and similar schemes never do.
func sameSite(u *url.URL, host string) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host == host || u.Host == ""
}

func newMarkdownConverter(domain string) *md.Converter {
	conv := md.NewConverter(domain, true, nil)
	conv.Use(plugin.GitHubFlavored())
	return conv
}

// extractPage reads everything the migration needs out of a parsed page.
// pageURL must be absolute; relative src and href values resolve against it.
func extractPage(doc *goquery.Document, pageURL *url.URL, conv *md.Converter) Page {
	page := Page{
		URL:           Normalize(pageURL),
		Headings:      []Heading{},
		Paragraphs:    []string{},
		Images:        []Image{},
		InternalLinks: []Link{},
		ExternalLinks: []Link{},
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				page.Headings = append(page.Headings, Heading{Level: level, Text: text})
			}
		})
	}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			page.Paragraphs = append(page.Paragraphs, text)
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		if abs, err := pageURL.Parse(src); err == nil {
			src = abs.String()
		}
		page.Images = append(page.Images, Image{Src: src, Alt: s.AttrOr("alt", "")})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target, err := pageURL.Parse(href)
		if err != nil {
			return
		}
		text := strings.TrimSpace(s.Text())
		if sameSite(target, pageURL.Host) {
			page.InternalLinks = append(page.InternalLinks, Link{URL: Normalize(target), Text: text})
			return
		}
		page.ExternalLinks = append(page.ExternalLinks, Link{URL: target.String(), Text: text})
	})

	if conv != nil {
		page.Markdown = captureMarkdown(doc, conv)
	}
	return page
}

// captureMarkdown converts the page's <main> (or <body>) to markdown.
func captureMarkdown(doc *goquery.Document, conv *md.Converter) string {
	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("body").First()
	}
	html, err := content.Html()
	if err != nil || strings.TrimSpace(html) == "" {
		return ""
	}
	markdown, err := conv.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}
