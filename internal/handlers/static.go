package handlers

import (
	"embed"
	"log/slog"
	"net/http"
)

//go:embed static/*.html
var staticFiles embed.FS

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, "static/index.html")
}

// HandleLoginPage sends signed-in users straight to the workspace
func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.gate.CurrentSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.servePage(w, "static/login.html")
}

func (h *Handler) servePage(w http.ResponseWriter, name string) {
	page, err := staticFiles.ReadFile(name)
	if err != nil {
		h.writeError(w, "Page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		slog.Error("Unable to write page", "page", name, "err", err)
	}
}
