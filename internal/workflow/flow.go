package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notecraft/notecraft/internal/generation"
	"github.com/notecraft/notecraft/internal/images"
	"github.com/notecraft/notecraft/internal/models"
	"github.com/notecraft/notecraft/internal/review"
	"golang.org/x/sync/errgroup"
)

// Step identifies a pipeline stage that calls the model
type Step string

const (
	StepRecognize   Step = "recognize"
	StepCopywriting Step = "copywriting"
	StepCover       Step = "cover"
)

var (
	ErrNoImage        = errors.New("upload an image first")
	ErrNotRecognized  = errors.New("recognize the image first")
	ErrNotConfirmed   = errors.New("confirm the product details first")
	ErrStepInProgress = errors.New("this step is already running")
	ErrSuperseded     = errors.New("result discarded, a newer recognition has started")
)

// Steps are the model-backed operations a flow drives
type Steps interface {
	Recognize(ctx context.Context, img *images.Image) (*models.ProductMetadata, error)
	GenerateCopywriting(ctx context.Context, meta models.ProductMetadata) (*models.CopywritingData, error)
	GenerateCoverImage(ctx context.Context, meta models.ProductMetadata) (*models.CoverImage, error)
}

// Flow is one user's pass through upload, recognize, review and generate.
// Model calls run without holding the lock; each step may only run once at a time.
type Flow struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	steps Steps

	mu          sync.Mutex
	image       *images.Image
	editor      *review.Editor
	confirmed   *models.ProductMetadata
	copywriting *models.CopywritingData
	warnings    []string
	cover       *models.CoverImage
	running     map[Step]bool
	// epoch increases with every recognition so late results can be dropped
	epoch uint64
}

func New(owner string, steps Steps) *Flow {
	return &Flow{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: time.Now(),
		steps:     steps,
		running:   make(map[Step]bool),
	}
}

// SetImage replaces the source photo. Results stay until the next recognition.
func (f *Flow) SetImage(img *images.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = img
}

// Recognize clears every downstream result, then runs recognition on the
// current image and opens a fresh editable review.
func (f *Flow) Recognize(ctx context.Context) (*models.ProductMetadata, error) {
	f.mu.Lock()
	if f.image == nil {
		f.mu.Unlock()
		return nil, ErrNoImage
	}
	if f.running[StepRecognize] {
		f.mu.Unlock()
		return nil, ErrStepInProgress
	}
	f.running[StepRecognize] = true
	f.epoch++
	gen := f.epoch
	img := f.image
	f.editor = nil
	f.confirmed = nil
	f.copywriting = nil
	f.warnings = nil
	f.cover = nil
	f.mu.Unlock()

	meta, err := f.steps.Recognize(ctx, img)

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, StepRecognize)
	if err != nil {
		return nil, err
	}
	if gen != f.epoch {
		return nil, ErrSuperseded
	}

	f.editor = review.New(*meta)
	draft := f.editor.Draft()
	slog.Info("Flow recognized", "flow_id", f.ID, "generation", gen)
	return &draft, nil
}

// Edit runs fn against the review editor under the flow lock
func (f *Flow) Edit(fn func(e *review.Editor) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editor == nil {
		return ErrNotRecognized
	}
	return fn(f.editor)
}

// Confirm locks the review and stores its snapshot as generation input
func (f *Flow) Confirm() (models.ProductMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editor == nil {
		return models.ProductMetadata{}, ErrNotRecognized
	}
	snapshot := f.editor.Confirm()
	stored := snapshot.Clone()
	f.confirmed = &stored
	return snapshot, nil
}

// Reedit unlocks the review. Generation needs a new confirmation afterwards.
func (f *Flow) Reedit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editor == nil {
		return ErrNotRecognized
	}
	f.editor.Reedit()
	f.confirmed = nil
	return nil
}

// GenerateCopywriting writes copy from the confirmed snapshot
func (f *Flow) GenerateCopywriting(ctx context.Context) (*models.CopywritingData, error) {
	snapshot, gen, err := f.begin(StepCopywriting)
	if err != nil {
		return nil, err
	}

	result, err := f.steps.GenerateCopywriting(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, StepCopywriting)
	if err != nil {
		return nil, err
	}
	if gen != f.epoch {
		return nil, ErrSuperseded
	}

	f.copywriting = result
	f.warnings = generation.CheckCopywriting(result)
	if len(f.warnings) > 0 {
		slog.Warn("Copywriting misses content targets", "flow_id", f.ID, "warnings", f.warnings)
	}
	out := *result
	return &out, nil
}

// GenerateCoverImage draws a cover from the confirmed snapshot
func (f *Flow) GenerateCoverImage(ctx context.Context) (*models.CoverImage, error) {
	snapshot, gen, err := f.begin(StepCover)
	if err != nil {
		return nil, err
	}

	cover, err := f.steps.GenerateCoverImage(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, StepCover)
	if err != nil {
		return nil, err
	}
	if gen != f.epoch {
		return nil, ErrSuperseded
	}

	f.cover = cover
	return cover, nil
}

// GenerateAll runs both generation steps concurrently. Each outcome is kept
// on its own; the first failure is returned.
func (f *Flow) GenerateAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := f.GenerateCopywriting(ctx)
		return err
	})
	g.Go(func() error {
		_, err := f.GenerateCoverImage(ctx)
		return err
	})
	return g.Wait()
}

// Cover returns the generated cover, if any
func (f *Flow) Cover() (*models.CoverImage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cover, f.cover != nil
}

func (f *Flow) begin(step Step) (models.ProductMetadata, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmed == nil {
		return models.ProductMetadata{}, 0, ErrNotConfirmed
	}
	if f.running[step] {
		return models.ProductMetadata{}, 0, ErrStepInProgress
	}
	f.running[step] = true
	return f.confirmed.Clone(), f.epoch, nil
}
