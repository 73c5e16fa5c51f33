package view

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/assistant"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storage"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storefront"
)

type staticCatalog []catalog.Product

func (c staticCatalog) Load(context.Context) ([]catalog.Product, error) { return c, nil }

func (c staticCatalog) Lookup(_ context.Context, id string) (catalog.Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

type echo struct{}

func (echo) Complete(_ context.Context, m []assistant.Message) (assistant.Reply, error) {
	return assistant.Reply{Content: "Use **Revitalift Serum** at night."}, nil
}

func newWorkspace(t *testing.T) *storefront.Workspace {
	t.Helper()
	products := staticCatalog{
		{ID: "1", Name: "Revitalift Serum", Brand: "L'Oréal Paris", Category: catalog.CategorySkincare, Image: "https://img.example/1.jpg", Description: "hyaluronic acid moisturizer"},
		{ID: "2", Name: "True Match Foundation", Brand: "L'Oréal Paris", Category: catalog.CategoryMakeup},
		{ID: "3", Name: "Infallible Lipstick", Brand: "L'Oréal Paris", Category: catalog.CategoryMakeup},
	}
	deps := storefront.Deps{Catalog: products, Store: storage.NewMemory(), Assistant: echo{}, TurnTimeout: time.Second}
	return storefront.NewWorkspace(context.Background(), deps, "visitor")
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{})
	require.NoError(t, err)
	return r
}

func renderChangesDoc(t *testing.T, r *Renderer, ws *storefront.Workspace, ch storefront.Change) *goquery.Document {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, r.Changes(rec, ws.Snapshot(context.Background()), ch))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestPageInitialState(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, PageData{Title: "Routine Builder", CSRFToken: "tok", Snapshot: ws.Snapshot(context.Background())}))
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "Select a category to view products", strings.TrimSpace(doc.Find("#productsContainer .placeholder-message").Text()))
	require.Zero(t, doc.Find(".product-card").Length())
	require.Equal(t, "No products selected yet", strings.TrimSpace(doc.Find("#selectedProductsList .no-products").Text()))
	_, disabled := doc.Find("#generateRoutine").Attr("disabled")
	require.True(t, disabled)
	require.Equal(t, 0, doc.Find("#clearFavorites").Length())
	require.Contains(t, doc.Find("#chatWindow .initial-message").Text(), "Hello Gorgeous!")
	headers, _ := doc.Find("body").Attr("hx-headers")
	require.Contains(t, headers, "tok")
	require.Equal(t, 10, doc.Find("#categoryFilter option[value!='']").Length())
}

func TestPageListingWithCount(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ws.SetCategory("makeup")
	_, err := ws.ToggleSelection(context.Background(), "2")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, PageData{Snapshot: ws.Snapshot(context.Background())}))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "2 of 3 products found", strings.TrimSpace(doc.Find(".results-count").Text()))
	require.Equal(t, 2, doc.Find(".product-card").Length())
	require.True(t, doc.Find("#product-2").HasClass("selected"))
	require.False(t, doc.Find("#product-3").HasClass("selected"))
	_, selected := doc.Find("#categoryFilter option[value='makeup']").Attr("selected")
	require.True(t, selected)
	_, disabled := doc.Find("#generateRoutine").Attr("disabled")
	require.False(t, disabled)
}

func TestChangesRepaintOnlyTouchedCard(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ws.SetCategory("makeup")
	ch, err := ws.ToggleSelection(context.Background(), "3")
	require.NoError(t, err)

	doc := renderChangesDoc(t, r, ws, ch)
	require.Equal(t, 1, doc.Find(".product-card").Length(), "only the toggled card is repainted")
	card := doc.Find("#product-3")
	require.True(t, card.HasClass("selected"))
	oob, _ := card.Attr("hx-swap-oob")
	require.Equal(t, "outerHTML", oob)
	require.Equal(t, 0, doc.Find("#productsContainer").Length())
	require.Equal(t, "Infallible Lipstick", strings.TrimSpace(doc.Find("#selectedProductsList .selected-product span").Text()))
	_, disabled := doc.Find("#generateRoutine").Attr("disabled")
	require.False(t, disabled)
}

func TestChangesSkipCardsOutsideListing(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ch, err := ws.ToggleFavorite(context.Background(), "1")
	require.NoError(t, err)

	doc := renderChangesDoc(t, r, ws, ch)
	require.Zero(t, doc.Find(".product-card").Length())
	require.Equal(t, "Revitalift Serum", strings.TrimSpace(doc.Find("#favoritesContainer .favorite-card h4").Text()))
	require.Equal(t, 1, doc.Find("#clearFavorites").Length())
}

func TestChangesListing(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ws.SetSearchTerm("retinol")
	doc := renderChangesDoc(t, r, ws, storefront.Change{Listing: true})
	require.Equal(t, "0 of 3 products found", strings.TrimSpace(doc.Find(".results-count").Text()))
	oob, _ := doc.Find("#productsContainer").Attr("hx-swap-oob")
	require.Equal(t, "outerHTML", oob)

	doc = renderChangesDoc(t, r, ws, ws.ClearFilters())
	require.Equal(t, "Select a category to view products", strings.TrimSpace(doc.Find(".placeholder-message").Text()))
	val, _ := doc.Find("#productSearch").Attr("value")
	require.Empty(t, val)
}

func TestChangesConfirmDialog(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	_, _ = ws.ToggleFavorite(context.Background(), "1")
	ch, err := ws.ClearFavorites(context.Background(), nil)
	require.NoError(t, err)

	doc := renderChangesDoc(t, r, ws, ch)
	dialog := doc.Find("#modalRoot .confirm-dialog")
	require.Equal(t, "Are you sure you want to clear all your favorite products?", strings.TrimSpace(dialog.Find("p").Text()))
	vals, _ := dialog.Find(".confirm-yes").Attr("hx-vals")
	require.JSONEq(t, `{"confirm":"yes"}`, vals)
}

func TestChangesChatTurn(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ch, err := ws.SubmitChat(context.Background(), "what is **retinol**?")
	require.NoError(t, err)

	doc := renderChangesDoc(t, r, ws, ch)
	wrapper := doc.Find("[hx-swap-oob='beforeend:#chatWindow']")
	require.Equal(t, 1, wrapper.Length())
	require.Equal(t, "retinol", wrapper.Find(".msg.user .product-highlight").Text())
	pending := wrapper.Find(".msg.pending")
	require.Equal(t, "Typing...", strings.TrimSpace(pending.Find("em").Text()))
	get, _ := pending.Attr("hx-get")
	require.Equal(t, "/chat/turns/"+ch.Append[1].TurnID, get)
	swap, _ := pending.Attr("hx-swap")
	require.Contains(t, swap, "scroll:#chatWindow:bottom")

	resolved, err := ws.AwaitTurn(context.Background(), ch.Append[1].TurnID)
	require.NoError(t, err)
	doc = renderChangesDoc(t, r, ws, resolved)
	entry := doc.Find("#entry-" + ch.Append[1].ID)
	require.False(t, entry.HasClass("pending"))
	require.Equal(t, "Revitalift Serum", entry.Find(".product-highlight").Text())
	require.NotContains(t, entry.Text(), "**")
}

func TestChangesModal(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ch, err := ws.Details(context.Background(), "1")
	require.NoError(t, err)
	doc := renderChangesDoc(t, r, ws, ch)
	require.Equal(t, "Revitalift Serum", doc.Find("#modalRoot h3").Text())
	require.Equal(t, "Skincare", doc.Find("#modalRoot .modal-category").Text())
	require.Contains(t, doc.Find("#modalRoot .modal-description").Text(), "hyaluronic")

	doc = renderChangesDoc(t, r, ws, ws.CloseDetails())
	require.Equal(t, 1, doc.Find("#modalRoot").Length())
	require.Zero(t, doc.Find("#modalRoot .modal-content").Length())
}

func TestPageStructuredData(t *testing.T) {
	r := newRenderer(t)
	ws := newWorkspace(t)
	ws.SetCategory("skincare")
	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, PageData{Title: "Routine Builder", Snapshot: ws.Snapshot(context.Background())}))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	og, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	require.Equal(t, "https://img.example/1.jpg", og)
	ld := doc.Find(`script[type="application/ld+json"]`).Text()
	require.Contains(t, ld, `"@type":"ItemList"`)
	require.Contains(t, ld, "Revitalift Serum")
}
