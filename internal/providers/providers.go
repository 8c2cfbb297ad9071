package providers

import (
	"context"
	"strings"
)

// Blob is binary data with a declared media type
type Blob struct {
	MIMEType string
	Data     []byte
}

// FileRef points at content the provider hosts elsewhere
type FileRef struct {
	MIMEType string
	URI      string
}

// Request is a single generation call
type Request struct {
	Prompt string
	// Images are attached after the prompt, in order
	Images []Blob
	// ResponseMIMEType constrains the output format, e.g. application/json
	ResponseMIMEType string
	Temperature      *float32
}

// Part is one fragment of a candidate. Exactly one field is set.
type Part struct {
	Text       string
	InlineData *Blob
	FileData   *FileRef
}

// Candidate is one alternative answer returned by the model
type Candidate struct {
	Parts []Part
}

// Response is what a provider returned for a Request
type Response struct {
	Candidates []Candidate
}

// Text concatenates the text parts of the first candidate
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Generator defines the interface for a generative model handle
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

// Name implements Generator
func (f GeneratorFunc) Name() string {
	return "func"
}

// Generate calls f(ctx, req)
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// TextResponse builds a single-candidate response holding text
func TextResponse(text string) *Response {
	return &Response{Candidates: []Candidate{{Parts: []Part{{Text: text}}}}}
}
