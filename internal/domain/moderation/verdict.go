// internal/domain/moderation/verdict.go

package moderation

// Rejection reasons returned by the text check
const (
	ReasonExcessiveCaps       = "Excessive use of capital letters"
	ReasonExcessiveRepetition = "Excessive word repetition (possible spam)"
	ReasonInappropriate       = "Contains inappropriate language"
)

// Rejection reasons returned by the image check
const (
	ReasonImageTooLarge    = "Image file is too large (max 10MB)"
	ReasonImageInvalidType = "Invalid image file type"
	ReasonImageBadName     = "Inappropriate file name"
)

// CapsSentinel is the single flagged term reported for the capitals rule
const CapsSentinel = "EXCESSIVE_CAPS"

// Verdict is the outcome of a content check. It is never stored.
type Verdict struct {
	IsAppropriate bool     `json:"isAppropriate"`
	Reason        string   `json:"reason,omitempty"`
	FlaggedTerms  []string `json:"flaggedTerms,omitempty"`
}

// Accepted returns an appropriate verdict
func Accepted() Verdict {
	return Verdict{IsAppropriate: true}
}

// Rejected returns a rejected verdict with the given reason and terms
func Rejected(reason string, terms ...string) Verdict {
	return Verdict{IsAppropriate: false, Reason: reason, FlaggedTerms: terms}
}

// Image is the metadata of an attached image. Pixels are never inspected.
type Image struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

// SubmissionResult aggregates the text and image checks of a draft
type SubmissionResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Checker classifies user submitted content
type Checker interface {
	// CheckText classifies a block of text
	CheckText(text string) Verdict

	// CheckImage validates image metadata
	CheckImage(image Image) Verdict

	// ValidateSubmission runs both checks without short-circuiting between them
	ValidateSubmission(text string, image *Image) SubmissionResult
}
