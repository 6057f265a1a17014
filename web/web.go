// Package web embeds the front-end entry document.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html
var content embed.FS

// Handler serves the entry document for every non-API path; the front-end
// handles its own routing.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index, err := content.ReadFile("index.html")
		if err != nil {
			http.Error(w, "front-end unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(index)
	})
}
