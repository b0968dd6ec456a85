// internal/service/moderation/filter.go

package moderation

import (
	"strings"
	"unicode/utf8"

	"github.com/stelios-avg/locom/internal/domain/moderation"
)

const (
	// MaxImageSize is the largest accepted attachment in bytes
	MaxImageSize = 10 * 1024 * 1024

	capsRatioThreshold = 0.5
	capsMinLength      = 10
	repeatMinLength    = 3
	repeatMaxCount     = 5
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Filter implements the moderation.Checker interface over an injected denylist
type Filter struct {
	denylist Denylist
}

// NewFilter creates a filter using the built-in denylist
func NewFilter() *Filter {
	return NewFilterWithDenylist(DefaultDenylist())
}

// NewFilterWithDenylist creates a filter over the given denylist
func NewFilterWithDenylist(denylist Denylist) *Filter {
	return &Filter{denylist: denylist}
}

// NewFilterWithTerms creates a filter over an explicit term list
func NewFilterWithTerms(terms []string) *Filter {
	return NewFilterWithDenylist(NewDenylist(terms...))
}

// Denylist returns the filter's denylist
func (f *Filter) Denylist() Denylist {
	return f.denylist
}

// CheckText classifies text. The capitals rule wins over repetition, which wins
// over denylist hits. Matching is plain substring containment, so an innocent
// word containing a listed term is rejected too.
func (f *Filter) CheckText(text string) moderation.Verdict {
	matched := f.denylist.Matches(lower(text))

	length := utf8.RuneCountInString(text)
	if length > capsMinLength && capsRatio(text, length) > capsRatioThreshold {
		return moderation.Rejected(moderation.ReasonExcessiveCaps, moderation.CapsSentinel)
	}

	if word, ok := repeatedWord(text); ok {
		return moderation.Rejected(moderation.ReasonExcessiveRepetition, word)
	}

	if len(matched) > 0 {
		return moderation.Rejected(moderation.ReasonInappropriate, matched...)
	}

	return moderation.Accepted()
}

// CheckImage validates size, declared type and file name, in that order
func (f *Filter) CheckImage(image moderation.Image) moderation.Verdict {
	if image.Size > MaxImageSize {
		return moderation.Rejected(moderation.ReasonImageTooLarge)
	}

	if _, ok := allowedImageTypes[image.ContentType]; !ok {
		return moderation.Rejected(moderation.ReasonImageInvalidType)
	}

	if !f.CheckText(image.Name).IsAppropriate {
		return moderation.Rejected(moderation.ReasonImageBadName)
	}

	return moderation.Accepted()
}

// ValidateSubmission checks the body and, if present, the image, collecting
// every failure reason
func (f *Filter) ValidateSubmission(text string, image *moderation.Image) moderation.SubmissionResult {
	errs := []string{}

	if v := f.CheckText(text); !v.IsAppropriate {
		errs = append(errs, v.Reason)
	}

	if image != nil {
		if v := f.CheckImage(*image); !v.IsAppropriate {
			errs = append(errs, v.Reason)
		}
	}

	return moderation.SubmissionResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// capsRatio counts Latin and Greek capitals over length runes. Empty text has ratio 0.
func capsRatio(text string, length int) float64 {
	if length == 0 {
		return 0
	}

	caps := 0
	for _, r := range text {
		if (r >= 'A' && r <= 'Z') || (r >= 'Α' && r <= 'Ω') {
			caps++
		}
	}
	return float64(caps) / float64(length)
}

// repeatedWord returns the first token, in order of first appearance, longer
// than three runes that occurs more than five times. Tokens are case-sensitive.
func repeatedWord(text string) (string, bool) {
	words := strings.Fields(text)
	counts := make(map[string]int, len(words))
	order := make([]string, 0, len(words))

	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	for _, w := range order {
		if counts[w] > repeatMaxCount && utf8.RuneCountInString(w) > repeatMinLength {
			return w, true
		}
	}
	return "", false
}
