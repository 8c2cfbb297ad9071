package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("GET /login", h.HandleLoginPage)
	mux.Handle("GET /{$}", h.gate.Require(http.HandlerFunc(h.HandleIndex)))

	mux.HandleFunc("POST /auth/signup", h.HandleSignUp)
	mux.HandleFunc("POST /auth/signin", h.HandleSignIn)
	mux.HandleFunc("POST /auth/signout", h.HandleSignOut)

	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.gate.Require(fn))
	}
	api("GET /api/session", h.HandleSession)
	api("GET /api/flows", h.HandleListFlows)
	api("POST /api/flows", h.HandleCreateFlow)
	api("GET /api/flows/{id}", h.HandleGetFlow)
	api("DELETE /api/flows/{id}", h.HandleDeleteFlow)
	api("POST /api/upload", h.HandleUpload)
	api("POST /api/flows/{id}/recognize", h.HandleRecognize)
	api("PATCH /api/flows/{id}/metadata", h.HandleUpdateMetadata)
	api("POST /api/flows/{id}/metadata/{list}", h.HandleAddItem)
	api("DELETE /api/flows/{id}/metadata/{list}/{index}", h.HandleRemoveItem)
	api("POST /api/flows/{id}/confirm", h.HandleConfirm)
	api("POST /api/flows/{id}/reedit", h.HandleReedit)
	api("POST /api/flows/{id}/copywriting", h.HandleCopywriting)
	api("POST /api/flows/{id}/cover", h.HandleCover)
	api("POST /api/flows/{id}/generate", h.HandleGenerate)
	api("GET /api/flows/{id}/cover", h.HandleDownloadCover)

	return withLogging(mux)
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("degraded: " + err.Error())); err != nil {
				slog.Error("Unable to write healthcheck", "err", err)
			}
			return
		}
	}
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur_ms", time.Since(start).Milliseconds())
	})
}
