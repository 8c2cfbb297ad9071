package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ProductMetadata describes a product recognized from a photo
type ProductMetadata struct {
	ProductCategory     string   `json:"product_category"`
	Brand               string   `json:"brand"`
	Model               string   `json:"model"`
	EstimatedPriceRange string   `json:"estimated_price_range,omitempty"`
	KeyFeatures         []string `json:"key_features"`
	TargetAudience      string   `json:"target_audience"`
	ToneKeywords        []string `json:"tone_keywords"`
	Confidence          float64  `json:"confidence"`
}

// Clone returns a deep copy. Lists are never nil in the copy.
func (m ProductMetadata) Clone() ProductMetadata {
	out := m
	out.KeyFeatures = cloneList(m.KeyFeatures)
	out.ToneKeywords = cloneList(m.ToneKeywords)
	return out
}

// Validate reports the first field that makes the metadata unusable
func (m ProductMetadata) Validate() error {
	if m.Confidence < 0 || m.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", m.Confidence)
	}
	if m.KeyFeatures == nil {
		return errors.New("key_features is missing")
	}
	if m.ToneKeywords == nil {
		return errors.New("tone_keywords is missing")
	}
	return nil
}

func cloneList(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// CopywritingData is the generated post text
type CopywritingData struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CoverImage is a generated cover, either embedded bytes or a fetchable URL
type CoverImage struct {
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
	URL      string `json:"url,omitempty"`
}

// Embedded reports whether the cover carries its own bytes
func (c *CoverImage) Embedded() bool {
	return len(c.Data) > 0
}

// Reference returns something a browser can display directly
func (c *CoverImage) Reference() string {
	if c.Embedded() {
		return fmt.Sprintf("data:%s;base64,%s", c.MIMEType, base64.StdEncoding.EncodeToString(c.Data))
	}
	return c.URL
}

// Extension guesses a file extension for downloads
func (c *CoverImage) Extension() string {
	switch strings.ToLower(c.MIMEType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
