package chatfmt

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div id=\"root\">" + fragment + "</div>"))
	require.NoError(t, err)
	return doc
}

func TestHighlight(t *testing.T) {
	out := string(Highlight("Try **True Match Foundation** today"))
	require.Equal(t, `Try <span class="product-highlight">True Match Foundation</span> today`, out)
	require.NotContains(t, out, "**")
}

func TestHighlightEscapesMarkup(t *testing.T) {
	out := string(Highlight("<b>**x**</b> and **y"))
	require.Equal(t, `&lt;b&gt;<span class="product-highlight">x</span>&lt;/b&gt; and **y`, out)
}

func TestRenderHighlightsProducts(t *testing.T) {
	doc := parse(t, string(Render("Start with **Revitalift Serum**, then **True Match Foundation**.")))
	spans := doc.Find("span.product-highlight")
	require.Equal(t, 2, spans.Length())
	require.Equal(t, "Revitalift Serum", spans.First().Text())
	require.Equal(t, "True Match Foundation", spans.Last().Text())
	require.NotContains(t, doc.Find("#root").Text(), "**")
}

func TestRenderHighlightsWhereEmphasisWouldNot(t *testing.T) {
	inputs := map[string]string{
		"Try **Revitalift (30ml)**nightly": "Revitalift (30ml)",
		"I like ** spaced name ** a lot":   " spaced name ",
		"use**Elvive**daily":               "Elvive",
	}
	for in, want := range inputs {
		doc := parse(t, string(Render(in)))
		spans := doc.Find("span.product-highlight")
		require.Equal(t, 1, spans.Length(), in)
		require.Equal(t, want, spans.Text(), in)
		require.NotContains(t, doc.Find("#root").Text(), "**", in)

		user := parse(t, string(Highlight(in)))
		require.Equal(t, want, user.Find("span.product-highlight").Text(), "bot and user text highlight alike: %s", in)
	}
}

func TestRenderLeavesUnclosedMarkers(t *testing.T) {
	doc := parse(t, string(Render("only **half")))
	require.Zero(t, doc.Find("span.product-highlight").Length())
	require.Contains(t, doc.Find("#root").Text(), "**half")
}

func TestRenderExternalLinks(t *testing.T) {
	doc := parse(t, string(Render("Sources:\n1. [L'Oréal Paris](https://www.loreal-paris.com/)")))
	a := doc.Find("a")
	require.Equal(t, 1, a.Length())
	href, _ := a.Attr("href")
	require.Equal(t, "https://www.loreal-paris.com/", href)
	target, _ := a.Attr("target")
	require.Equal(t, "_blank", target)
	rel, _ := a.Attr("rel")
	require.Contains(t, rel, "noopener")
	require.Equal(t, "L'Oréal Paris", a.Text())
}

func TestRenderDropsUnsafeMarkup(t *testing.T) {
	out := string(Render(`Hi <script>alert(1)</script> [x](javascript:alert(1)) <span class="evil">y</span>`))
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "javascript:")
	require.NotContains(t, out, `class="evil"`)
}

func TestRenderKeepsSingleEmphasis(t *testing.T) {
	doc := parse(t, string(Render("apply *gently*")))
	require.Equal(t, "gently", doc.Find("em").Text())
	require.Zero(t, doc.Find("span.product-highlight").Length())
}
