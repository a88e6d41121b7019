// Package moderation screens player-chosen display names.
package moderation

import (
	"html"

	goaway "github.com/TwiN/go-away"
	"github.com/microcosm-cc/bluemonday"
)

// Service detects profanity (including leet-speak and accent obfuscation) and
// HTML markup in display names
type Service struct {
	detector *goaway.ProfanityDetector
	policy   *bluemonday.Policy
}

// New creates a moderation service with the default word lists
func New() *Service {
	return &Service{
		detector: goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(true).
			WithSanitizeSpecialCharacters(true).
			WithSanitizeAccents(true),
		policy: bluemonday.StrictPolicy(),
	}
}

// IsProfane reports whether name matches the profanity blocklist
func (s *Service) IsProfane(name string) bool {
	return s.detector.IsProfane(name)
}

// ContainsMarkup reports whether stripping all HTML would change name
func (s *Service) ContainsMarkup(name string) bool {
	return html.UnescapeString(s.policy.Sanitize(name)) != name
}
