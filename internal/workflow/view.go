package workflow

import (
	"time"

	"github.com/notecraft/notecraft/internal/models"
	"github.com/notecraft/notecraft/internal/review"
)

// Flow states as seen by clients
const (
	StateEmpty    = "empty"
	StateUploaded = "uploaded"
)

type ImageInfo struct {
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bytes    int    `json:"bytes"`
	Checksum string `json:"checksum"`
}

type CoverInfo struct {
	MIMEType  string `json:"mime_type,omitempty"`
	Embedded  bool   `json:"embedded"`
	Reference string `json:"reference"`
}

// View is a JSON-ready copy of a flow
type View struct {
	ID                  string                  `json:"id"`
	CreatedAt           time.Time               `json:"created_at"`
	State               string                  `json:"state"`
	Image               *ImageInfo              `json:"image,omitempty"`
	Draft               *models.ProductMetadata `json:"draft,omitempty"`
	Confirmed           *models.ProductMetadata `json:"confirmed,omitempty"`
	Copywriting         *models.CopywritingData `json:"copywriting,omitempty"`
	CopywritingWarnings []string                `json:"copywriting_warnings,omitempty"`
	Cover               *CoverInfo              `json:"cover,omitempty"`
	InProgress          map[Step]bool           `json:"in_progress"`
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		ID:         f.ID,
		CreatedAt:  f.CreatedAt,
		State:      StateEmpty,
		InProgress: map[Step]bool{StepRecognize: false, StepCopywriting: false, StepCover: false},
	}
	for step, running := range f.running {
		v.InProgress[step] = running
	}

	if f.image != nil {
		v.State = StateUploaded
		v.Image = &ImageInfo{
			MIMEType: f.image.MIMEType,
			Width:    f.image.Width,
			Height:   f.image.Height,
			Bytes:    len(f.image.Data),
			Checksum: f.image.Checksum,
		}
	}

	if f.editor != nil {
		v.State = string(f.editor.State())
		draft := f.editor.Draft()
		v.Draft = &draft
	}
	if f.editor != nil && f.editor.State() == review.StateConfirmed && f.confirmed != nil {
		confirmed := f.confirmed.Clone()
		v.Confirmed = &confirmed
	}

	if f.copywriting != nil {
		c := *f.copywriting
		v.Copywriting = &c
		v.CopywritingWarnings = append([]string(nil), f.warnings...)
	}

	if f.cover != nil {
		v.Cover = &CoverInfo{
			MIMEType:  f.cover.MIMEType,
			Embedded:  f.cover.Embedded(),
			Reference: f.cover.Reference(),
		}
	}

	return v
}
