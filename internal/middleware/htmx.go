package middleware

import (
	"encoding/json"
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HXTrigger asks htmx to dispatch client events named by the payload keys after the swap.
func HXTrigger(w http.ResponseWriter, events map[string]any) {
	if len(events) == 0 {
		return
	}
	if raw, err := json.Marshal(events); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
}

// HXReswap overrides the swap strategy declared on the triggering element.
func HXReswap(w http.ResponseWriter, strategy string) {
	w.Header().Set("HX-Reswap", strategy)
}
