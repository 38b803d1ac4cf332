// Package render produces per-section plain-text views of a generated output
// bundle, sufficient for a copy-to-clipboard export. It never mutates the
// entry it reads.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
)

// Section names the four independent format views.
type Section string

const (
	SectionBlog     Section = "blog"
	SectionLinkedIn Section = "linkedin"
	SectionThread   Section = "x"
	SectionEmail    Section = "email"
)

var (
	// ErrUnknownSection signals a section name outside the four formats.
	ErrUnknownSection = errors.New("render: unknown section")
	// ErrNoOutputs signals an entry that has not been finalized yet.
	ErrNoOutputs = errors.New("render: entry has no generated outputs")
)

// ParseSection validates a raw section name.
func ParseSection(rawInput string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(rawInput))) {
	case SectionBlog:
		return SectionBlog, nil
	case SectionLinkedIn:
		return SectionLinkedIn, nil
	case SectionThread:
		return SectionThread, nil
	case SectionEmail:
		return SectionEmail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, rawInput)
	}
}

// SectionText renders one section of the entry's output bundle as plain text.
func SectionText(entry testimonial.Entry, section Section) (string, error) {
	if entry.Outputs == nil {
		return "", fmt.Errorf("%w: %s", ErrNoOutputs, entry.ID)
	}

	outputs := entry.Outputs
	switch section {
	case SectionBlog:
		return fmt.Sprintf("# %s\n\n%s", outputs.BlogPost.Title, outputs.BlogPost.Content), nil
	case SectionLinkedIn:
		return outputs.LinkedIn.Content, nil
	case SectionThread:
		return strings.Join(outputs.TwitterThread.Tweets, "\n\n---\n\n"), nil
	case SectionEmail:
		return fmt.Sprintf("Subjects: %s\n\n%s",
			strings.Join(outputs.Email.Subjects, " / "), outputs.Email.Content), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
}
