package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/notecraft/notecraft/internal/providers"
)

func TestNewFactoryWithoutKey(t *testing.T) {
	f, err := NewFactory(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Expected no construction error, got %v", err)
	}
	defer f.Close()

	if !errors.Is(f.Err(), ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey from Err(), got %v", f.Err())
	}

	for _, m := range []*Model{f.Pro(), f.Image(), f.Flash()} {
		_, err := m.Generate(context.Background(), providers.Request{Prompt: "hi"})
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("Expected %s to fail with ErrMissingAPIKey, got %v", m.Name(), err)
		}
	}
}

func TestDefaultModelNames(t *testing.T) {
	f, err := NewFactory(context.Background(), Options{FlashModel: "custom-flash"})
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}

	if f.Pro().Name() != DefaultProModel {
		t.Errorf("Expected pro model %s, got %s", DefaultProModel, f.Pro().Name())
	}
	if f.Image().Name() != DefaultImageModel {
		t.Errorf("Expected image model %s, got %s", DefaultImageModel, f.Image().Name())
	}
	if f.Flash().Name() != "custom-flash" {
		t.Errorf("Expected flash model custom-flash, got %s", f.Flash().Name())
	}
}

func TestByRole(t *testing.T) {
	f, _ := NewFactory(context.Background(), Options{})

	tests := []struct {
		role    string
		want    *Model
		wantErr bool
	}{
		{role: "pro", want: f.Pro()},
		{role: "", want: f.Pro()},
		{role: "Flash", want: f.Flash()},
		{role: "image", want: f.Image()},
		{role: "turbo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, err := f.ByRole(tt.role)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByRole(%q) error = %v, wantErr %v", tt.role, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ByRole(%q) returned the wrong handle", tt.role)
			}
		})
	}
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text("here you go"),
						genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}},
						genai.FileData{MIMEType: "image/png", URI: "https://files.example.com/x.png"},
					},
				},
			},
			{Content: nil},
		},
	}

	out := convertResponse(resp)
	if len(out.Candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(out.Candidates))
	}

	parts := out.Candidates[0].Parts
	if len(parts) != 3 {
		t.Fatalf("Expected 3 parts, got %d", len(parts))
	}
	if parts[0].Text != "here you go" {
		t.Errorf("Expected text part, got %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" || len(parts[1].InlineData.Data) != 3 {
		t.Errorf("Expected inline data part, got %+v", parts[1])
	}
	if parts[2].FileData == nil || parts[2].FileData.URI != "https://files.example.com/x.png" {
		t.Errorf("Expected file data part, got %+v", parts[2])
	}
	if len(out.Candidates[1].Parts) != 0 {
		t.Errorf("Expected empty second candidate, got %+v", out.Candidates[1])
	}
	if out.Text() != "here you go" {
		t.Errorf("Expected Text() to return the text part, got %q", out.Text())
	}
}

func TestConvertNilResponse(t *testing.T) {
	out := convertResponse(nil)
	if out == nil || len(out.Candidates) != 0 {
		t.Errorf("Expected empty response, got %+v", out)
	}
}
