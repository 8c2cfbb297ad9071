package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notecraft/notecraft/internal/images"
	"github.com/notecraft/notecraft/internal/models"
	"github.com/notecraft/notecraft/internal/providers"
)

// Step errors. Callers only ever see these; details go to the log.
var (
	ErrRecognitionFailed     = errors.New("商品识别失败，请重试")
	ErrCopywritingFailed     = errors.New("文案生成失败，请重试")
	ErrImageGenerationFailed = errors.New("宣传图生成失败，请重试")
)

const jsonMIMEType = "application/json"

// Options wires the model handles each step uses
type Options struct {
	// Vision recognizes products from photos
	Vision providers.Generator
	// Copywriter writes the post text
	Copywriter providers.Generator
	// Imager draws the cover
	Imager providers.Generator
	// Timeout bounds each model call; zero means only the caller's context applies
	Timeout time.Duration
}

type Service struct {
	vision     providers.Generator
	copywriter providers.Generator
	imager     providers.Generator
	timeout    time.Duration
}

func NewService(opts Options) *Service {
	copywriter := opts.Copywriter
	if copywriter == nil {
		copywriter = opts.Vision
	}
	return &Service{
		vision:     opts.Vision,
		copywriter: copywriter,
		imager:     opts.Imager,
		timeout:    opts.Timeout,
	}
}

// Recognize extracts product attributes from a photo
func (s *Service) Recognize(ctx context.Context, img *images.Image) (*models.ProductMetadata, error) {
	if img == nil || len(img.Data) == 0 {
		slog.Error("Gemini recognition error", "error", images.ErrEmpty)
		return nil, ErrRecognitionFailed
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = images.DefaultMIMEType
	}

	temperature := float32(0.1)
	resp, err := s.call(ctx, s.vision, providers.Request{
		Prompt:      buildRecognitionPrompt(),
		Images:      []providers.Blob{{MIMEType: mimeType, Data: img.Data}},
		Temperature: &temperature,
	})
	if err != nil {
		slog.Error("Gemini recognition error", "error", err)
		return nil, ErrRecognitionFailed
	}

	meta, err := parseRecognition(resp.Text())
	if err != nil {
		slog.Error("Gemini recognition error", "error", err)
		return nil, ErrRecognitionFailed
	}

	slog.Info("Product recognized", "brand", meta.Brand, "model", meta.Model, "confidence", meta.Confidence)
	return meta, nil
}

// GenerateCopywriting writes a title and body for a confirmed product
func (s *Service) GenerateCopywriting(ctx context.Context, meta models.ProductMetadata) (*models.CopywritingData, error) {
	resp, err := s.call(ctx, s.copywriter, providers.Request{
		Prompt:           buildCopywritingPrompt(meta),
		ResponseMIMEType: jsonMIMEType,
	})
	if err != nil {
		slog.Error("Gemini copywriting error", "error", err)
		return nil, ErrCopywritingFailed
	}

	result, err := parseCopywriting(resp.Text())
	if err != nil {
		slog.Error("Gemini copywriting error", "error", err)
		return nil, ErrCopywritingFailed
	}

	slog.Info("Copywriting generated", "title_length", len([]rune(result.Title)), "body_length", len([]rune(result.Body)))
	return result, nil
}

// GenerateCoverImage draws a single cover image for a confirmed product
func (s *Service) GenerateCoverImage(ctx context.Context, meta models.ProductMetadata) (*models.CoverImage, error) {
	resp, err := s.call(ctx, s.imager, providers.Request{
		Prompt: buildCoverPrompt(meta),
	})
	if err != nil {
		slog.Error("Image generation error", "error", err)
		return nil, ErrImageGenerationFailed
	}

	cover, err := extractCoverImage(resp)
	if err != nil {
		slog.Error("Image generation error", "error", err)
		return nil, ErrImageGenerationFailed
	}

	slog.Info("Cover image generated", "embedded", cover.Embedded(), "mime_type", cover.MIMEType)
	return cover, nil
}

func (s *Service) call(ctx context.Context, g providers.Generator, req providers.Request) (*providers.Response, error) {
	if g == nil {
		return nil, errors.New("no model configured for this step")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.Generate(ctx, req)
	slog.Debug("Model call finished", "model", g.Name(), "duration_ms", time.Since(start).Milliseconds(), "ok", err == nil)
	return resp, err
}
