// internal/service/moderation/denylist.go

package moderation

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Denylist is an immutable, ordered set of substrings that trigger rejection.
// The zero value matches nothing.
type Denylist struct {
	terms   []string
	lowered []string
}

// NewDenylist builds a denylist from the given terms in order. Blank entries and
// duplicates are dropped.
func NewDenylist(terms ...string) Denylist {
	d := Denylist{}
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		low := lower(term)
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		d.terms = append(d.terms, term)
		d.lowered = append(d.lowered, low)
	}
	return d
}

// DefaultDenylist returns the built-in Greek and English profanity list together
// with spam phrases and bare URL markers
func DefaultDenylist() Denylist {
	return NewDenylist(DefaultTerms()...)
}

// DefaultTerms returns a copy of the built-in terms
func DefaultTerms() []string {
	terms := make([]string, 0, len(greekProfanity)+len(englishProfanity)+len(spamPhrases)+len(urlMarkers))
	terms = append(terms, greekProfanity...)
	terms = append(terms, englishProfanity...)
	terms = append(terms, spamPhrases...)
	terms = append(terms, urlMarkers...)
	return terms
}

var (
	greekProfanity   = []string{"μαλακ", "γαμ", "σκατ", "πουτ", "αρχιδ", "μαμ", "μπασταρδ"}
	englishProfanity = []string{"fuck", "shit", "damn", "bitch", "asshole", "bastard", "crap"}
	spamPhrases      = []string{
		"buy now", "click here", "limited offer", "act now", "guaranteed",
		"αγόρασε τώρα", "κάνε κλικ", "περιορισμένη προσφορά",
	}
	urlMarkers = []string{"http://", "https://", "www."}
)

// Terms returns a copy of the terms in their original form
func (d Denylist) Terms() []string {
	out := make([]string, len(d.terms))
	copy(out, d.terms)
	return out
}

// Len returns the number of terms
func (d Denylist) Len() int {
	return len(d.terms)
}

// Matches returns every term contained in lowered, in denylist order.
// lowered must already be lower-cased.
func (d Denylist) Matches(lowered string) []string {
	var matched []string
	for i, term := range d.lowered {
		if strings.Contains(lowered, term) {
			matched = append(matched, d.terms[i])
		}
	}
	return matched
}

// denylistFile is the on-disk shape of a denylist override
type denylistFile struct {
	Profanity []string `yaml:"profanity"`
	Spam      []string `yaml:"spam"`
	URLs      []string `yaml:"urls"`
	Terms     []string `yaml:"terms"`
}

// LoadDenylist reads a YAML denylist. All groups are concatenated in file order
// profanity, spam, urls, terms.
func LoadDenylist(path string) (Denylist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Denylist{}, fmt.Errorf("read denylist: %w", err)
	}
	return ParseDenylist(data)
}

// ParseDenylist decodes a YAML denylist document
func ParseDenylist(data []byte) (Denylist, error) {
	var f denylistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Denylist{}, fmt.Errorf("parse denylist: %w", err)
	}

	var terms []string
	terms = append(terms, f.Profanity...)
	terms = append(terms, f.Spam...)
	terms = append(terms, f.URLs...)
	terms = append(terms, f.Terms...)

	d := NewDenylist(terms...)
	if d.Len() == 0 {
		return Denylist{}, fmt.Errorf("parse denylist: no terms")
	}
	return d, nil
}

// lower folds s the way browsers do, including the Greek final sigma.
// A Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
