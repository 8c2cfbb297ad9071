package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/notecraft/notecraft/internal/providers"
	"google.golang.org/api/option"
)

const (
	DefaultProModel   = "gemini-2.5-pro"
	DefaultImageModel = "nano-banana-pro-preview"
	DefaultFlashModel = "gemini-2.5-flash"
)

// Model roles accepted by ByRole
const (
	RolePro   = "pro"
	RoleImage = "image"
	RoleFlash = "flash"
)

// ErrMissingAPIKey is returned by every call made without a credential
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set")

// Options configures the factory
type Options struct {
	APIKey     string
	ProModel   string
	ImageModel string
	FlashModel string
}

// Factory hands out model handles that share one SDK client
type Factory struct {
	client *genai.Client
	err    error
	pro    *Model
	image  *Model
	flash  *Model
}

// NewFactory builds handles for the three model variants.
// A missing API key is not a construction error: it is logged, kept in Err,
// and every handle fails on first use.
func NewFactory(ctx context.Context, opts Options) (*Factory, error) {
	f := &Factory{}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		slog.Warn("Gemini API key is missing, model calls will fail until it is configured")
		f.err = ErrMissingAPIKey
	} else {
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create new gemini client: %w", err)
		}
		f.client = client
	}

	f.pro = f.newModel(orDefault(opts.ProModel, DefaultProModel))
	f.image = f.newModel(orDefault(opts.ImageModel, DefaultImageModel))
	f.flash = f.newModel(orDefault(opts.FlashModel, DefaultFlashModel))

	return f, nil
}

func (f *Factory) newModel(name string) *Model {
	return &Model{name: name, client: f.client}
}

// Err reports a configuration problem that will surface on the first call
func (f *Factory) Err() error {
	return f.err
}

// Pro returns the general multimodal model
func (f *Factory) Pro() *Model { return f.pro }

// Image returns the image synthesis model
func (f *Factory) Image() *Model { return f.image }

// Flash returns the fast, low latency model
func (f *Factory) Flash() *Model { return f.flash }

// ByRole resolves a handle by its role name
func (f *Factory) ByRole(role string) (*Model, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RolePro, "":
		return f.pro, nil
	case RoleImage:
		return f.image, nil
	case RoleFlash:
		return f.flash, nil
	default:
		return nil, fmt.Errorf("unknown model role: %s", role)
	}
}

// Close releases the SDK client
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}

// Model is a handle to one Gemini model
type Model struct {
	name   string
	client *genai.Client
}

// Name returns the model name
func (m *Model) Name() string {
	return m.name
}

// Generate sends the prompt and attached images in a single request
func (m *Model) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	if m.client == nil {
		return nil, fmt.Errorf("model %s: %w", m.name, ErrMissingAPIKey)
	}

	model := m.client.GenerativeModel(m.name)
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.ResponseMIMEType != "" {
		model.ResponseMIMEType = req.ResponseMIMEType
	}

	parts := make([]genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.Text(req.Prompt))
	for _, img := range req.Images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out := convertResponse(resp)
	slog.Debug("Gemini response received", "model", m.name, "candidates", len(out.Candidates))
	return out, nil
}

func convertResponse(resp *genai.GenerateContentResponse) *providers.Response {
	out := &providers.Response{}
	if resp == nil {
		return out
	}

	for _, c := range resp.Candidates {
		var candidate providers.Candidate
		if c != nil && c.Content != nil {
			for _, p := range c.Content.Parts {
				if part, ok := convertPart(p); ok {
					candidate.Parts = append(candidate.Parts, part)
				}
			}
		}
		out.Candidates = append(out.Candidates, candidate)
	}
	return out
}

func convertPart(p genai.Part) (providers.Part, bool) {
	switch v := p.(type) {
	case genai.Text:
		return providers.Part{Text: string(v)}, true
	case genai.Blob:
		return providers.Part{InlineData: &providers.Blob{MIMEType: v.MIMEType, Data: v.Data}}, true
	case *genai.Blob:
		return providers.Part{InlineData: &providers.Blob{MIMEType: v.MIMEType, Data: v.Data}}, true
	case genai.FileData:
		return providers.Part{FileData: &providers.FileRef{MIMEType: v.MIMEType, URI: v.URI}}, true
	case *genai.FileData:
		return providers.Part{FileData: &providers.FileRef{MIMEType: v.MIMEType, URI: v.URI}}, true
	default:
		return providers.Part{}, false
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
