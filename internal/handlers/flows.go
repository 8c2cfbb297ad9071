package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/notecraft/notecraft/internal/review"
	"github.com/notecraft/notecraft/internal/workflow"
)

func (h *Handler) HandleListFlows(w http.ResponseWriter, r *http.Request) {
	flows := h.flows.GetAll(h.owner(r))
	views := make([]workflow.View, 0, len(flows))
	for _, flow := range flows {
		views = append(views, flow.View())
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	flow := h.newFlow(r)
	h.writeJSON(w, http.StatusCreated, flow.View())
}

func (h *Handler) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	h.flows.Delete(flow.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRecognize(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if _, err := flow.Recognize(r.Context()); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

type metadataUpdate struct {
	ProductCategory     *string  `json:"product_category"`
	Brand               *string  `json:"brand"`
	Model               *string  `json:"model"`
	EstimatedPriceRange *string  `json:"estimated_price_range"`
	TargetAudience      *string  `json:"target_audience"`
	Confidence          *float64 `json:"confidence"`
}

func (h *Handler) HandleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var update metadataUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := flow.Edit(func(e *review.Editor) error {
		// confidence is the only value that can be rejected, so apply it first
		if update.Confidence != nil {
			if err := e.SetConfidence(*update.Confidence); err != nil {
				return err
			}
		}
		fields := []struct {
			field review.Field
			value *string
		}{
			{review.FieldCategory, update.ProductCategory},
			{review.FieldBrand, update.Brand},
			{review.FieldModel, update.Model},
			{review.FieldPriceRange, update.EstimatedPriceRange},
			{review.FieldTargetAudience, update.TargetAudience},
		}
		for _, f := range fields {
			if f.value == nil {
				continue
			}
			if err := e.SetField(f.field, *f.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var request struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	list := review.List(r.PathValue("list"))
	err := flow.Edit(func(e *review.Editor) error {
		_, err := e.AddItem(list, request.Value)
		return err
	})
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, "index must be a number", http.StatusBadRequest)
		return
	}

	list := review.List(r.PathValue("list"))
	if err := flow.Edit(func(e *review.Editor) error { return e.RemoveItem(list, index) }); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if _, err := flow.Confirm(); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleReedit(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if err := flow.Reedit(); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleCopywriting(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if _, err := flow.GenerateCopywriting(r.Context()); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleCover(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if _, err := flow.GenerateCoverImage(r.Context()); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if err := flow.GenerateAll(r.Context()); err != nil {
		h.writeStepError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, flow.View())
}

// HandleDownloadCover sends an embedded cover as a file, or redirects to a
// cover the model only linked to
func (h *Handler) HandleDownloadCover(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.getFlowOrError(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	cover, ok := flow.Cover()
	if !ok {
		h.writeError(w, "No cover image yet", http.StatusNotFound)
		return
	}

	if !cover.Embedded() {
		http.Redirect(w, r, cover.URL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", cover.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="xhs-cover`+cover.Extension()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(cover.Data)))
	if _, err := w.Write(cover.Data); err != nil {
		slog.Error("Unable to write cover", "flow_id", flow.ID, "err", err)
	}
}
