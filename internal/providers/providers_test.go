package providers

import (
	"context"
	"testing"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want string
	}{
		{name: "nil", resp: nil, want: ""},
		{name: "no candidates", resp: &Response{}, want: ""},
		{name: "single", resp: TextResponse("hello"), want: "hello"},
		{
			name: "joins text parts of first candidate only",
			resp: &Response{Candidates: []Candidate{
				{Parts: []Part{{Text: "a"}, {InlineData: &Blob{MIMEType: "image/png", Data: []byte{1}}}, {Text: "b"}}},
				{Parts: []Part{{Text: "ignored"}}},
			}},
			want: "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Text(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(ctx context.Context, req Request) (*Response, error) {
		return TextResponse("echo: " + req.Prompt), nil
	})

	resp, err := g.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text() != "echo: hi" {
		t.Errorf("Expected 'echo: hi', got %s", resp.Text())
	}
	if g.Name() != "func" {
		t.Errorf("Expected name func, got %s", g.Name())
	}
}
