package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/middleware"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storefront"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/view"
)

const (
	pageTitle          = "L'Oréal Smart Routine & Product Advisor"
	unavailableNotice  = "Sorry, that product is no longer available."
	emptySelectionNote = "Please select at least one product to generate a routine."
)

func (s *server) workspace(r *http.Request) *storefront.Workspace {
	return s.registry.Workspace(r.Context(), mw.VisitorID(r))
}

// page renders the full layout for the visitor's current state.
func (s *server) page(w http.ResponseWriter, r *http.Request, ws *storefront.Workspace) {
	data := view.PageData{
		Title:     pageTitle,
		CSRFToken: mw.CSRFToken(r),
		Snapshot:  ws.Snapshot(r.Context()),
	}
	if err := s.views.Page(w, data); err != nil {
		observability.FromContext(r.Context()).Error("render page", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
	}
}

// respond renders the regions ch touched.
func (s *server) respond(w http.ResponseWriter, r *http.Request, ws *storefront.Workspace, ch storefront.Change) {
	if err := s.views.Changes(w, ws.Snapshot(r.Context()), ch); err != nil {
		observability.FromContext(r.Context()).Error("render changes", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
	}
}

// home renders the storefront.
func (s *server) home(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, s.workspace(r))
}

// products applies the category and search criteria.
func (s *server) products(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	q := r.URL.Query()
	ch := ws.SetCategory(q.Get("category")).Merge(ws.SetSearchTerm(q.Get("q")))
	if !mw.IsHTMX(r.Context()) {
		s.page(w, r, ws)
		return
	}
	push := "/products"
	if crit := ws.Snapshot(r.Context()).Criteria; !crit.Empty() {
		v := url.Values{}
		if crit.Category != "" {
			v.Set("category", crit.Category)
		}
		if crit.SearchTerm != "" {
			v.Set("q", crit.SearchTerm)
		}
		push += "?" + v.Encode()
	} else {
		push = "/"
	}
	w.Header().Set("HX-Push-Url", push)
	s.respond(w, r, ws, ch)
}

func (s *server) clearFilters(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	w.Header().Set("HX-Push-Url", "/")
	s.respond(w, r, ws, ws.ClearFilters())
}

// details opens the product modal.
func (s *server) details(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.Details(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !mw.IsHTMX(r.Context()) {
		s.page(w, r, ws)
		return
	}
	s.respond(w, r, ws, ch)
}

func (s *server) closeModal(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	s.respond(w, r, ws, ws.CloseDetails())
}

func (s *server) toggleSelection(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.ToggleSelection(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, ws, ch)
}

func (s *server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.ToggleFavorite(r.Context(), chi.URLParam(r, "productID"))
	switch {
	case errors.Is(err, storefront.ErrUnknownProduct):
		s.fail(w, r, err)
		return
	case err != nil:
		// state was rolled back; repaint so the heart shows the truth
		productID := chi.URLParam(r, "productID")
		ch = ws.SaveFailedNotice().Merge(storefront.Change{Cards: []string{productID}, Favorites: true})
	default:
		mw.HXTrigger(w, map[string]any{"favorites:changed": map[string]int{"count": len(ws.Snapshot(r.Context()).Favorites)}})
	}
	s.respond(w, r, ws, ch)
}

func (s *server) selectFavorite(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.SelectFavorite(r.Context(), chi.URLParam(r, "productID"))
	switch {
	case errors.Is(err, storefront.ErrProductUnavailable):
		ch = ws.Notice(unavailableNotice)
	case err != nil:
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, ws, ch)
}

// clearFavorites asks for confirmation first; the dialog resubmits with confirm=yes.
func (s *server) clearFavorites(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	confirmed := r.FormValue("confirm") == "yes"
	ch, err := ws.ClearFavorites(r.Context(), func(string) bool { return confirmed })
	if err != nil {
		ch = ws.SaveFailedNotice()
	}
	if confirmed {
		// closes the dialog
		ch = ch.Merge(storefront.Change{Modal: true})
	}
	s.respond(w, r, ws, ch)
}

func (s *server) submitChat(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.SubmitChat(r.Context(), r.FormValue("userInput"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, ws, ch)
}

func (s *server) generateRoutine(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ch, err := ws.GenerateRoutine(r.Context())
	if errors.Is(err, storefront.ErrEmptySelection) {
		ch = ws.Notice(emptySelectionNote)
	} else if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, ws, ch)
}

// awaitTurn holds the request until the queued reply lands, then swaps it over the placeholder.
// A turn still queued when the wait runs out answers with the placeholder again, which polls anew.
func (s *server) awaitTurn(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	ctx, cancel := context.WithTimeout(r.Context(), s.turnWait())
	defer cancel()
	ch, err := ws.AwaitTurn(ctx, chi.URLParam(r, "turnID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, ws, ch)
}

// fail maps workspace errors to status codes.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.FromContext(r.Context())
	switch {
	case errors.Is(err, storefront.ErrUnknownProduct), errors.Is(err, storefront.ErrUnknownTurn):
		mw.WriteError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, storefront.ErrEmptyMessage):
		mw.WriteError(w, r, http.StatusBadRequest, "message is empty")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Warn("request ended before the reply", zap.Error(err))
		mw.WriteError(w, r, http.StatusGatewayTimeout, "timed out waiting for the assistant")
	default:
		log.Error("request failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
