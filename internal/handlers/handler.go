package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/notecraft/notecraft/internal/auth"
	"github.com/notecraft/notecraft/internal/generation"
	"github.com/notecraft/notecraft/internal/images"
	"github.com/notecraft/notecraft/internal/review"
	"github.com/notecraft/notecraft/internal/storage"
	"github.com/notecraft/notecraft/internal/workflow"
)

const defaultMaxUploadBytes = 10 << 20

type Options struct {
	Steps          workflow.Steps
	Store          *storage.FlowStore
	Gate           *auth.Gate
	Fetcher        *images.Fetcher
	MaxUploadBytes int64
	// Ready reports why the service cannot serve model calls, if it cannot
	Ready func() error
}

type Handler struct {
	steps          workflow.Steps
	flows          *storage.FlowStore
	gate           *auth.Gate
	fetcher        *images.Fetcher
	maxUploadBytes int64
	ready          func() error
}

func New(opts Options) *Handler {
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = images.NewFetcher(maxBytes)
	}
	return &Handler{
		steps:          opts.Steps,
		flows:          opts.Store,
		gate:           opts.Gate,
		fetcher:        fetcher,
		maxUploadBytes: maxBytes,
		ready:          opts.Ready,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, map[string]string{"error": message})
}

// writeStepError maps workflow, review and step errors to status codes
func (h *Handler) writeStepError(w http.ResponseWriter, err error) {
	h.writeError(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrStepInProgress),
		errors.Is(err, workflow.ErrNotConfirmed),
		errors.Is(err, workflow.ErrNotRecognized),
		errors.Is(err, workflow.ErrNoImage),
		errors.Is(err, workflow.ErrSuperseded),
		errors.Is(err, review.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, review.ErrUnknownField),
		errors.Is(err, review.ErrIndexOutOfRange),
		errors.Is(err, review.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, generation.ErrRecognitionFailed),
		errors.Is(err, generation.ErrCopywritingFailed),
		errors.Is(err, generation.ErrImageGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Flow helpers
func (h *Handler) owner(r *http.Request) string {
	if s, ok := auth.FromContext(r.Context()); ok {
		return s.UserID
	}
	return ""
}

// getFlowOrError resolves {id} for the signed-in user. Flows of other users
// are reported as missing.
func (h *Handler) getFlowOrError(w http.ResponseWriter, r *http.Request, flowID string) (*workflow.Flow, bool) {
	flow, exists := h.flows.Get(flowID)
	if !exists || flow.Owner != h.owner(r) {
		h.writeError(w, "Flow not found", http.StatusNotFound)
		return nil, false
	}
	return flow, true
}

func (h *Handler) newFlow(r *http.Request) *workflow.Flow {
	flow := workflow.New(h.owner(r), h.steps)
	h.flows.Set(flow)
	slog.Info("Flow created", "flow_id", flow.ID, "owner", flow.Owner, "live_flows", h.flows.Count())
	return flow
}
