package middleware

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError answers htmx callers with a JSON body they can surface, and everyone else with plain text.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeError(w, r, code, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		// htmx ignores error bodies unless told where to put them
		HXReswap(w, "none")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
		return
	}
	http.Error(w, msg, code)
}
