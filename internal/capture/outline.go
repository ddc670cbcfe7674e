package capture

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
)

// MaxOutline bounds the markdown outline handed to the model.
const MaxOutline = 8000

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Outline renders page markup as markdown, cut at MaxOutline bytes on a line
// boundary. Unconvertible input yields "".
func Outline(page string, pageURL string) string {
	if strings.TrimSpace(page) == "" {
		return ""
	}
	var (
		md  string
		err error
	)
	if pageURL != "" {
		md, err = mdConverter.ConvertString(page, converter.WithDomain(pageURL))
	} else {
		md, err = mdConverter.ConvertString(page)
	}
	if err != nil {
		return ""
	}
	md = strings.TrimSpace(md)
	if len(md) <= MaxOutline {
		return md
	}
	cut := md[:MaxOutline]
	if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
		cut = cut[:nl]
	}
	return cut
}

// Title returns the text of the document's first <title>, or its first <h1>
// when there is no title.
func Title(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	if t := firstText(doc, "title"); t != "" {
		return t
	}
	return firstText(doc, "h1")
}

func firstText(n *html.Node, tag string) string {
	if n.Type == html.ElementNode && n.Data == tag {
		return strings.Join(strings.Fields(textContent(n)), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := firstText(c, tag); t != "" {
			return t
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
		b.WriteByte(' ')
	}
	return b.String()
}
