package testimonial

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxScreenshots caps the number of screenshot attachments per entry.
const MaxScreenshots = 3

var (
	// ErrInvalidEntryID indicates that an entry identifier is empty or exceeds storage bounds.
	ErrInvalidEntryID = errors.New("testimonial: invalid entry id")
	// ErrInvalidTone indicates an unrecognized tone value.
	ErrInvalidTone = errors.New("testimonial: invalid tone")
	// ErrInvalidLength indicates an unrecognized length value.
	ErrInvalidLength = errors.New("testimonial: invalid length")
	// ErrInvalidCTAStyle indicates an unrecognized call-to-action style.
	ErrInvalidCTAStyle = errors.New("testimonial: invalid cta style")
	// ErrTooManyScreenshots indicates the screenshot cap was exceeded.
	ErrTooManyScreenshots = errors.New("testimonial: too many screenshots")
)

const maxIdentifierLength = 190

// EntryID represents a validated entry identifier.
type EntryID string

// NewEntryID validates raw input and returns an EntryID.
func NewEntryID(rawInput string) (EntryID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEntryID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidEntryID, maxIdentifierLength)
	}
	return EntryID(trimmed), nil
}

// String returns the underlying string identifier.
func (id EntryID) String() string {
	return string(id)
}

// Tone selects the register of the generated copy.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneBold         Tone = "bold"
)

// ParseTone validates raw input against the supported tones.
func ParseTone(rawInput string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(rawInput))) {
	case ToneProfessional:
		return ToneProfessional, nil
	case ToneCasual:
		return ToneCasual, nil
	case ToneBold:
		return ToneBold, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTone, rawInput)
	}
}

// Length selects the target size of the generated copy.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// ParseLength validates raw input against the supported lengths.
func ParseLength(rawInput string) (Length, error) {
	switch Length(strings.ToLower(strings.TrimSpace(rawInput))) {
	case LengthShort:
		return LengthShort, nil
	case LengthMedium:
		return LengthMedium, nil
	case LengthLong:
		return LengthLong, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLength, rawInput)
	}
}

// CTAStyle selects how strongly the generated copy asks the reader to act.
type CTAStyle string

const (
	CTAStyleSoft   CTAStyle = "soft"
	CTAStyleDirect CTAStyle = "direct"
	CTAStyleNone   CTAStyle = "none"
)

// ParseCTAStyle validates raw input against the supported styles.
func ParseCTAStyle(rawInput string) (CTAStyle, error) {
	switch CTAStyle(strings.ToLower(strings.TrimSpace(rawInput))) {
	case CTAStyleSoft:
		return CTAStyleSoft, nil
	case CTAStyleDirect:
		return CTAStyleDirect, nil
	case CTAStyleNone:
		return CTAStyleNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCTAStyle, rawInput)
	}
}

// BlogPost is the long-form section of an output bundle.
type BlogPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LinkedInPost is the professional-network section of an output bundle.
type LinkedInPost struct {
	Content string `json:"content"`
}

// TwitterThread is the ordered short-segment section of an output bundle.
type TwitterThread struct {
	Tweets []string `json:"tweets"`
}

// ReferralEmail is the referral-message section of an output bundle.
type ReferralEmail struct {
	Subjects []string `json:"subjects"`
	Content  string   `json:"content"`
}

// Outputs is the four-section content bundle produced by one generation call.
// All four sections are always present together; there is no partial bundle.
type Outputs struct {
	BlogPost      BlogPost      `json:"blogPost"`
	LinkedIn      LinkedInPost  `json:"linkedIn"`
	TwitterThread TwitterThread `json:"twitterThread"`
	Email         ReferralEmail `json:"email"`
}

// Entry is the persisted unit of participant-supplied testimonial input,
// with or without a generated output bundle attached.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ParticipantName string `json:"participantName"`
	RoleTitle       string `json:"roleTitle"`
	Company         string `json:"company,omitempty"`
	Location        string `json:"location,omitempty"`
	BackgroundBio   string `json:"backgroundBio"`

	GoalsBeforeWorkshop string `json:"goalsBeforeWorkshop"`
	WhatTheyBuilt       string `json:"whatTheyBuilt"`
	HowItWorks          string `json:"howItWorks"`
	FavoriteMoment      string `json:"favoriteMoment"`
	BiggestBreakthrough string `json:"biggestBreakthrough"`
	ResultsMetrics      string `json:"resultsMetrics"`
	WhoShouldAttend     string `json:"whoShouldAttend"`
	QuotePull           string `json:"quotePull"`

	ConsentToUse bool `json:"consentToUse"`
	AllowNameUse bool `json:"allowNameUse"`
	Anonymize    bool `json:"anonymize"`

	Tone       Tone     `json:"tone"`
	Length     Length   `json:"length"`
	CTAStyle   CTAStyle `json:"ctaStyle"`
	BrandVoice string   `json:"brandVoice"`

	Screenshots  []string `json:"screenshots"`
	DocumentData string   `json:"prdFileUrl,omitempty"`

	Outputs *Outputs `json:"generatedOutputs,omitempty"`
}

// Finalized reports whether the entry carries a generated output bundle.
func (e Entry) Finalized() bool {
	return e.Outputs != nil
}

// Validate checks the structural invariants that hold for every stored entry.
func (e Entry) Validate() error {
	if _, err := NewEntryID(e.ID); err != nil {
		return err
	}
	if len(e.Screenshots) > MaxScreenshots {
		return fmt.Errorf("%w: %d", ErrTooManyScreenshots, len(e.Screenshots))
	}
	if _, err := ParseTone(string(e.Tone)); err != nil {
		return err
	}
	if _, err := ParseLength(string(e.Length)); err != nil {
		return err
	}
	if _, err := ParseCTAStyle(string(e.CTAStyle)); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the entry. Slices and the output bundle are
// duplicated so mutations on the copy never reach the original.
func (e Entry) Clone() Entry {
	clone := e
	if e.Screenshots != nil {
		clone.Screenshots = make([]string, len(e.Screenshots))
		copy(clone.Screenshots, e.Screenshots)
	}
	if e.Outputs != nil {
		outputs := *e.Outputs
		if e.Outputs.TwitterThread.Tweets != nil {
			outputs.TwitterThread.Tweets = make([]string, len(e.Outputs.TwitterThread.Tweets))
			copy(outputs.TwitterThread.Tweets, e.Outputs.TwitterThread.Tweets)
		}
		if e.Outputs.Email.Subjects != nil {
			outputs.Email.Subjects = make([]string, len(e.Outputs.Email.Subjects))
			copy(outputs.Email.Subjects, e.Outputs.Email.Subjects)
		}
		clone.Outputs = &outputs
	}
	return clone
}
