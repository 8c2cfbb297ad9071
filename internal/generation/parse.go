package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/notecraft/notecraft/internal/models"
	"github.com/notecraft/notecraft/internal/providers"
)

// defaultCoverMIMEType is used when an inline image part declares no type
const defaultCoverMIMEType = "image/png"

var (
	openFencePattern  = regexp.MustCompile("^\\s*```(?:json|JSON)?\\s*")
	closeFencePattern = regexp.MustCompile("\\s*```\\s*$")
	urlPattern        = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
)

// stripCodeFences removes the markdown fence the model may wrap JSON in.
// Fences inside the payload are left alone.
func stripCodeFences(text string) string {
	text = openFencePattern.ReplaceAllString(text, "")
	text = closeFencePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// recognitionPayload uses pointers so absent keys can be told apart from zero values
type recognitionPayload struct {
	ProductCategory     *string   `json:"product_category"`
	Brand               *string   `json:"brand"`
	Model               *string   `json:"model"`
	EstimatedPriceRange *string   `json:"estimated_price_range"`
	KeyFeatures         *[]string `json:"key_features"`
	TargetAudience      *string   `json:"target_audience"`
	ToneKeywords        *[]string `json:"tone_keywords"`
	Confidence          *float64  `json:"confidence"`
}

func parseRecognition(text string) (*models.ProductMetadata, error) {
	var p recognitionPayload
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &p); err != nil {
		return nil, fmt.Errorf("failed to parse recognition JSON: %w", err)
	}

	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("product_category", p.ProductCategory != nil)
	check("brand", p.Brand != nil)
	check("model", p.Model != nil)
	check("key_features", p.KeyFeatures != nil && *p.KeyFeatures != nil)
	check("target_audience", p.TargetAudience != nil)
	check("tone_keywords", p.ToneKeywords != nil && *p.ToneKeywords != nil)
	check("confidence", p.Confidence != nil)
	if len(missing) > 0 {
		return nil, fmt.Errorf("recognition JSON missing fields: %s", strings.Join(missing, ", "))
	}

	meta := models.ProductMetadata{
		ProductCategory: *p.ProductCategory,
		Brand:           *p.Brand,
		Model:           *p.Model,
		KeyFeatures:     *p.KeyFeatures,
		TargetAudience:  *p.TargetAudience,
		ToneKeywords:    *p.ToneKeywords,
		Confidence:      *p.Confidence,
	}
	if p.EstimatedPriceRange != nil {
		meta.EstimatedPriceRange = *p.EstimatedPriceRange
	}
	meta = meta.Clone()

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

type copywritingPayload struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func parseCopywriting(text string) (*models.CopywritingData, error) {
	var p copywritingPayload
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &p); err != nil {
		return nil, fmt.Errorf("failed to parse copywriting JSON: %w", err)
	}
	if p.Title == nil || p.Body == nil {
		return nil, errors.New("copywriting JSON must contain title and body")
	}
	return &models.CopywritingData{Title: *p.Title, Body: *p.Body}, nil
}

// extractCoverImage inspects the first candidate only. The first part that
// carries image bytes or a file reference wins; otherwise the text is
// scanned for a URL.
func extractCoverImage(resp *providers.Response) (*models.CoverImage, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("no candidates returned from model")
	}

	for _, part := range resp.Candidates[0].Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = defaultCoverMIMEType
			}
			return &models.CoverImage{MIMEType: mimeType, Data: part.InlineData.Data}, nil
		}
		if part.FileData != nil && part.FileData.URI != "" {
			return &models.CoverImage{MIMEType: part.FileData.MIMEType, URL: part.FileData.URI}, nil
		}
	}

	if link := findURL(resp.Text()); link != "" {
		return &models.CoverImage{URL: link}, nil
	}

	return nil, errors.New("model returned no image data")
}

func findURL(text string) string {
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		candidate = strings.TrimRight(candidate, ".,;:!?")
		u, err := url.Parse(candidate)
		if err == nil && u.IsAbs() && u.Host != "" {
			return u.String()
		}
	}
	return ""
}
