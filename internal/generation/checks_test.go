package generation

import (
	"strings"
	"testing"

	"github.com/notecraft/notecraft/internal/models"
)

func TestCheckCopywriting(t *testing.T) {
	goodBody := "姐妹们真的绝了\n#好物推荐 #OOTD #精致生活 #博主日常 #口红"

	tests := []struct {
		name     string
		copy     models.CopywritingData
		want     int
		contains string
	}{
		{
			name: "within targets",
			copy: models.CopywritingData{Title: "神仙口红💄必入", Body: goodBody},
			want: 0,
		},
		{
			name:     "title too long",
			copy:     models.CopywritingData{Title: strings.Repeat("好", 21), Body: goodBody},
			want:     1,
			contains: "title",
		},
		{
			name:     "too few hashtags",
			copy:     models.CopywritingData{Title: "短", Body: "#一 #二"},
			want:     1,
			contains: "hashtags",
		},
		{
			name:     "banned word",
			copy:     models.CopywritingData{Title: "短", Body: goodBody + " 加我微信"},
			want:     2,
			contains: "banned",
		},
		{
			name: "xhs closed hashtags count once",
			copy: models.CopywritingData{Title: "短", Body: "#一# #二# #三# #四# #五#"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := CheckCopywriting(&tt.copy)
			if len(warnings) != tt.want {
				t.Fatalf("Expected %d warnings, got %d: %v", tt.want, len(warnings), warnings)
			}
			if tt.contains != "" && !strings.Contains(strings.Join(warnings, "\n"), tt.contains) {
				t.Errorf("Expected a warning mentioning %q, got %v", tt.contains, warnings)
			}
		})
	}
}

func TestCheckCopywritingNil(t *testing.T) {
	if warnings := CheckCopywriting(nil); warnings != nil {
		t.Errorf("Expected nil warnings, got %v", warnings)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```":         `{"a":1}`,
		"```{\"a\":1}```":                 `{"a":1}`,
		"  {\"a\":1}  ":                   `{"a":1}`,
		"{\"a\":\"```go\"}":               "{\"a\":\"```go\"}",
		"```json\n{\"a\":\"x```y\"}\n```": "{\"a\":\"x```y\"}",
	}
	for input, want := range tests {
		if got := stripCodeFences(input); got != want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", input, got, want)
		}
	}
}
