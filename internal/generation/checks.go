package generation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/notecraft/notecraft/internal/models"
)

// hashtags are "#tag" runs, optionally closed by another "#" as the XHS editor does
var hashtagPattern = regexp.MustCompile(`#[^\s#]+#?`)

// CheckCopywriting reports where generated copy misses the targets set in
// the prompt. The result is advisory and never blocks the copy.
func CheckCopywriting(c *models.CopywritingData) []string {
	if c == nil {
		return nil
	}

	var warnings []string
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Title)); n > MaxTitleRunes {
		warnings = append(warnings, fmt.Sprintf("title is %d characters, target is at most %d", n, MaxTitleRunes))
	}

	if n := len(hashtagPattern.FindAllString(c.Body, -1)); n < MinHashtags || n > MaxHashtags {
		warnings = append(warnings, fmt.Sprintf("body has %d hashtags, target is %d-%d", n, MinHashtags, MaxHashtags))
	}

	for _, word := range BannedWords {
		if strings.Contains(c.Title, word) || strings.Contains(c.Body, word) {
			warnings = append(warnings, fmt.Sprintf("contains banned word %q", word))
		}
	}
	return warnings
}
