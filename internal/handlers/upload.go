package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/notecraft/notecraft/internal/images"
	"github.com/notecraft/notecraft/internal/workflow"
)

// multipart framing allowance on top of the image limit
const formOverhead = 1 << 20

var errTooLarge = errors.New("image too large")

// HandleUpload stores a product photo on a flow. Without flow_id a new flow
// is created.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*2+formOverhead)

	var (
		img    *images.Image
		flowID string
		err    error
	)
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		img, flowID, err = h.readJSONUpload(r)
	} else {
		img, flowID, err = h.readFileUpload(r)
	}
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.Is(err, errTooLarge) || errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("%w (max %d bytes)", errTooLarge, h.maxUploadBytes)
		}
		h.writeError(w, "Failed to read image: "+err.Error(), status)
		return
	}

	var flow *workflow.Flow
	if flowID != "" {
		var ok bool
		if flow, ok = h.getFlowOrError(w, r, flowID); !ok {
			return
		}
	} else {
		flow = h.newFlow(r)
	}

	flow.SetImage(img)
	slog.Info("Image uploaded", "flow_id", flow.ID, "mime_type", img.MIMEType, "bytes", len(img.Data), "checksum", img.Checksum)
	h.writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) readJSONUpload(r *http.Request) (*images.Image, string, error) {
	var request struct {
		ImageData string `json:"image_data"`
		ImageURL  string `json:"image_url"`
		FlowID    string `json:"flow_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, "", fmt.Errorf("invalid JSON: %w", err)
	}

	var (
		img *images.Image
		err error
	)
	switch {
	case request.ImageData != "":
		img, err = images.ParseDataURI(request.ImageData)
	case request.ImageURL != "":
		img, err = h.fetcher.Fetch(r.Context(), request.ImageURL)
	default:
		return nil, "", errors.New("image_data or image_url is required")
	}
	if err != nil {
		return nil, "", err
	}
	if int64(len(img.Data)) > h.maxUploadBytes {
		return nil, "", errTooLarge
	}
	return img, request.FlowID, nil
}

func (h *Handler) readFileUpload(r *http.Request) (*images.Image, string, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes + formOverhead); err != nil {
		return nil, "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			return nil, "", fmt.Errorf("failed to read file: %w", err)
		}
	}
	defer file.Close()

	data, err := readLimited(file, h.maxUploadBytes)
	if err != nil {
		return nil, "", err
	}

	img, err := images.Decode(data, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", err
	}
	return img, r.FormValue("flow_id"), nil
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
