// Package view renders the storefront page and the fragments htmx swaps into it.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/chatfmt"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/format"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/seo"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storefront"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Options configures a Renderer.
type Options struct {
	// Dev reparses templates from Dir on every render.
	Dev bool
	// Dir is the on-disk template directory used in dev mode.
	Dir string
}

// Renderer executes the page layout and fragments.
type Renderer struct {
	dev  bool
	dir  string
	mu   sync.RWMutex
	tmpl *template.Template
}

// PageData feeds the full page layout.
type PageData struct {
	Title     string
	CSRFToken string
	Snapshot  storefront.Snapshot
	// SEO is derived from Title and the visible products when left empty.
	SEO seo.Meta
}

type regionView struct {
	S   storefront.Snapshot
	OOB bool
}

type cardView struct {
	Product  catalog.Product
	Selected bool
	Favorite bool
	OOB      bool
}

type confirmView struct {
	Prompt string
	Action string
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{dev: opts.Dev, dir: opts.Dir}
	if r.dev && r.dir == "" {
		r.dir = "internal/view/templates"
	}
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.tmpl = t
	return r, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"now":           time.Now,
		"categories":    func() []catalog.Category { return catalog.Categories },
		"categoryLabel": format.CategoryLabel,
		"render":        chatfmt.Render,
		"highlight":     chatfmt.Highlight,
		// seo.JSON escapes <, > and & so the payload cannot close the script element
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"region": func(s storefront.Snapshot, oob bool) regionView {
			return regionView{S: s, OOB: oob}
		},
		"card": func(s storefront.Snapshot, p catalog.Product, oob bool) cardView {
			return cardView{Product: p, Selected: s.IsSelected(p.ID), Favorite: s.IsFavorite(p.ID), OOB: oob}
		},
	}
}

func (r *Renderer) parse() (*template.Template, error) {
	var src fs.FS = embedded
	pattern := "templates/*.tmpl"
	if r.dev {
		src = os.DirFS(r.dir)
		pattern = "*.tmpl"
	}
	t, err := template.New("_root").Funcs(funcMap()).ParseFS(src, pattern)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return t, nil
}

// templates returns the parsed set; in dev mode it is reparsed from disk.
func (r *Renderer) templates() (*template.Template, error) {
	if r.dev {
		t, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.tmpl = t
		r.mu.Unlock()
		return t, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tmpl, nil
}

// Page renders the full layout.
func (r *Renderer) Page(w http.ResponseWriter, data PageData) error {
	if data.SEO.Title == "" {
		data.SEO = seo.Storefront(data.Title, seoProducts(data.Snapshot.Listing.Products))
	}
	return r.write(w, func(t *template.Template, buf *bytes.Buffer) error {
		return t.ExecuteTemplate(buf, "base", data)
	})
}

// Changes renders the regions named by ch as out-of-band fragments. A resolved turn is the primary
// content so it can replace its pending placeholder.
func (r *Renderer) Changes(w http.ResponseWriter, s storefront.Snapshot, ch storefront.Change) error {
	return r.write(w, func(t *template.Template, buf *bytes.Buffer) error {
		return renderChanges(t, buf, s, ch)
	})
}

func renderChanges(t *template.Template, buf *bytes.Buffer, s storefront.Snapshot, ch storefront.Change) error {
	if ch.Resolved != nil {
		if err := t.ExecuteTemplate(buf, "frag_chat_entry", *ch.Resolved); err != nil {
			return err
		}
	}
	oob := regionView{S: s, OOB: true}
	if ch.Filters {
		if err := t.ExecuteTemplate(buf, "frag_filters", oob); err != nil {
			return err
		}
	}
	if ch.Listing {
		if err := t.ExecuteTemplate(buf, "frag_products", oob); err != nil {
			return err
		}
	} else {
		for _, id := range ch.Cards {
			p, ok := s.Visible(id)
			if !ok {
				continue
			}
			card := cardView{Product: p, Selected: s.IsSelected(id), Favorite: s.IsFavorite(id), OOB: true}
			if err := t.ExecuteTemplate(buf, "frag_product_card", card); err != nil {
				return err
			}
		}
	}
	if ch.Selection {
		if err := t.ExecuteTemplate(buf, "frag_selection_panel", oob); err != nil {
			return err
		}
		if err := t.ExecuteTemplate(buf, "frag_routine_button", oob); err != nil {
			return err
		}
	}
	if ch.Favorites {
		if err := t.ExecuteTemplate(buf, "frag_favorites_panel", oob); err != nil {
			return err
		}
	}
	switch {
	case ch.Confirm != "":
		if err := t.ExecuteTemplate(buf, "frag_confirm_dialog", confirmView{Prompt: ch.Confirm, Action: "/favorites/clear"}); err != nil {
			return err
		}
	case ch.Modal:
		if err := t.ExecuteTemplate(buf, "frag_modal_root", oob); err != nil {
			return err
		}
	}
	if len(ch.Append) > 0 {
		if err := t.ExecuteTemplate(buf, "frag_chat_append", ch.Append); err != nil {
			return err
		}
	}
	return nil
}

// write buffers the output so a template error never leaves a half-written response.
func (r *Renderer) write(w http.ResponseWriter, exec func(*template.Template, *bytes.Buffer) error) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := exec(t, &buf); err != nil {
		return fmt.Errorf("view: execute: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = io.Copy(w, &buf)
	return err
}

func seoProducts(products []catalog.Product) []seo.Product {
	out := make([]seo.Product, 0, len(products))
	for _, p := range products {
		out = append(out, seo.Product{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    string(p.Category),
			Image:       p.Image,
			Description: p.Description,
		})
	}
	return out
}
