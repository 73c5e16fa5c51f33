// Package chatfmt turns assistant text into display HTML.
package chatfmt

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// HighlightClass marks product names the assistant wrapped in **.
const HighlightClass = "product-highlight"

var (
	markdown = goldmark.New(
		goldmark.WithParser(parser.NewParser(
			parser.WithBlockParsers(parser.DefaultBlockParsers()...),
			// ahead of emphasis (500) so **x** never falls to the flanking rules
			parser.WithInlineParsers(append(parser.DefaultInlineParsers(), util.Prioritized(highlightParser{}, 450))...),
			parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
		)),
		goldmark.WithRendererOptions(
			ghtml.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(chatRenderer{}, 100)),
		),
	)
	policy = newPolicy()

	highlightPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^` + HighlightClass + `$`)).OnElements("span")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts reply text to sanitized HTML: **x** becomes a highlighted span and
// [text](url) an external link.
func Render(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return Highlight(text)
	}
	return template.HTML(strings.TrimSpace(policy.Sanitize(buf.String())))
}

// Highlight escapes text and wraps each **x** span in the highlight wrapper, nothing else.
func Highlight(text string) template.HTML {
	escaped := html.EscapeString(text)
	out := highlightPattern.ReplaceAllString(escaped, `<span class="`+HighlightClass+`">$1</span>`)
	return template.HTML(out)
}

var kindHighlight = ast.NewNodeKind("Highlight")

// highlightNode is a **x** span. Its only child is the raw text between the markers.
type highlightNode struct {
	ast.BaseInline
}

func (n *highlightNode) Kind() ast.NodeKind { return kindHighlight }

func (n *highlightNode) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

// highlightParser matches **x** on a single line the same way Highlight does.
type highlightParser struct{}

func (highlightParser) Trigger() []byte { return []byte{'*'} }

func (highlightParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 5 || line[0] != '*' || line[1] != '*' {
		return nil
	}
	end := bytes.Index(line[2:], []byte("**"))
	if end < 1 {
		return nil
	}
	n := &highlightNode{}
	n.AppendChild(n, ast.NewTextSegment(text.NewSegment(seg.Start+2, seg.Start+2+end)))
	block.Advance(end + 4)
	return n
}

// chatRenderer overrides how highlights, emphasis and links are written.
type chatRenderer struct{}

func (r chatRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindHighlight, r.renderHighlight)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindLink, r.renderLink)
}

func (chatRenderer) renderHighlight(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<span class="` + HighlightClass + `">`)
	} else {
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkContinue, nil
}

func (chatRenderer) renderEmphasis(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	open, closing := "<em>", "</em>"
	if n.Level == 2 {
		open, closing = `<span class="`+HighlightClass+`">`, "</span>"
	}
	if entering {
		_, _ = w.WriteString(open)
	} else {
		_, _ = w.WriteString(closing)
	}
	return ast.WalkContinue, nil
}

func (chatRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	if !ghtml.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" target="_blank" rel="noopener noreferrer">`)
	return ast.WalkContinue, nil
}
