package assistant

import (
	"fmt"
	"strings"
)

// SearchResult is a web search hit returned next to the reply.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Citation is a source the reply draws on.
type Citation struct {
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url"`
}

// Reply is a successful completion.
type Reply struct {
	Content       string
	SearchResults []SearchResult
	Citations     []Citation
}

// Text is the content followed by a "Sources:" list of markdown links, one per distinct URL.
// Without sources it is just the content.
func (r Reply) Text() string {
	type source struct{ label, url string }
	var sources []source
	seen := map[string]bool{}
	add := func(label, url string) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		label = strings.TrimSpace(label)
		if label == "" {
			label = url
		}
		sources = append(sources, source{label: label, url: url})
	}
	for _, c := range r.Citations {
		label := c.Title
		if label == "" {
			label = c.Source
		}
		add(label, c.URL)
	}
	for _, s := range r.SearchResults {
		add(s.Title, s.URL)
	}
	if len(sources) == 0 {
		return r.Content
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(r.Content, "\n"))
	b.WriteString("\n\nSources:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, escapeLabel(s.label), s.url)
	}
	return strings.TrimRight(b.String(), "\n")
}

// escapeLabel keeps brackets in titles from closing the link text early.
func escapeLabel(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
