package main

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/config"
	mw "github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/middleware"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storefront"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/view"
)

// server holds what the handlers share.
type server struct {
	registry       *storefront.Registry
	views          *view.Renderer
	logger         *zap.Logger
	session        mw.SessionOptions
	publicDir      string
	requestTimeout time.Duration
}

func sessionOptions(cfg config.Config, logger *zap.Logger) mw.SessionOptions {
	return mw.SessionOptions{
		SigningKey: []byte(cfg.Session.SigningKey),
		Secure:     cfg.Session.Secure,
		MaxAge:     cfg.Session.MaxAge,
		Logger:     logger,
	}
}

const defaultRequestTimeout = 75 * time.Second

func (s *server) timeout() time.Duration {
	if s.requestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return s.requestTimeout
}

// turnWait bounds a chat poll so it answers before the Timeout middleware cuts the request off.
func (s *server) turnWait() time.Duration { return s.timeout() * 3 / 4 }

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Session(s.session))
	r.Use(mw.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(s.timeout()))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(os.DirFS(filepath.Join(s.publicDir, "assets"))))
	r.Handle("/assets/*", assets)

	r.Group(func(r chi.Router) {
		r.Use(mw.CSRF)

		r.Get("/", s.home)
		r.Get("/products", s.products)
		r.Post("/filters/clear", s.clearFilters)
		r.Get("/products/{productID}", s.details)
		r.Get("/modal/close", s.closeModal)

		r.Post("/selection/{productID}", s.toggleSelection)

		r.Post("/favorites/clear", s.clearFavorites)
		r.Post("/favorites/{productID}", s.toggleFavorite)
		r.Post("/favorites/{productID}/select", s.selectFavorite)

		r.Post("/chat", s.submitChat)
		r.Post("/routine", s.generateRoutine)
		r.Get("/chat/turns/{turnID}", s.awaitTurn)
	})
	return r
}
