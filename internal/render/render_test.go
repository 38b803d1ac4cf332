package render

import (
	"errors"
	"testing"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
)

func finalizedEntry() testimonial.Entry {
	return testimonial.Entry{
		ID: "a1",
		Outputs: &testimonial.Outputs{
			BlogPost:      testimonial.BlogPost{Title: "The Build", Content: "Body text."},
			LinkedIn:      testimonial.LinkedInPost{Content: "Hook and bullets."},
			TwitterThread: testimonial.TwitterThread{Tweets: []string{"t1", "t2", "t3"}},
			Email:         testimonial.ReferralEmail{Subjects: []string{"s1", "s2"}, Content: "Hey, check this out."},
		},
	}
}

func TestSectionTextBlogIncludesTitleHeading(t *testing.T) {
	text, err := SectionText(finalizedEntry(), SectionBlog)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expected := "# The Build\n\nBody text."
	if text != expected {
		t.Fatalf("unexpected blog text: %q", text)
	}
}

func TestSectionTextLinkedInIsBareContent(t *testing.T) {
	text, err := SectionText(finalizedEntry(), SectionLinkedIn)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if text != "Hook and bullets." {
		t.Fatalf("unexpected linkedIn text: %q", text)
	}
}

func TestSectionTextThreadJoinsTweetsWithSeparators(t *testing.T) {
	text, err := SectionText(finalizedEntry(), SectionThread)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expected := "t1\n\n---\n\nt2\n\n---\n\nt3"
	if text != expected {
		t.Fatalf("unexpected thread text: %q", text)
	}
}

func TestSectionTextEmailListsSubjects(t *testing.T) {
	text, err := SectionText(finalizedEntry(), SectionEmail)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expected := "Subjects: s1 / s2\n\nHey, check this out."
	if text != expected {
		t.Fatalf("unexpected email text: %q", text)
	}
}

func TestSectionTextRequiresFinalizedEntry(t *testing.T) {
	draft := testimonial.Entry{ID: "a1"}
	if _, err := SectionText(draft, SectionBlog); !errors.Is(err, ErrNoOutputs) {
		t.Fatalf("expected ErrNoOutputs, got %v", err)
	}
}

func TestParseSectionRejectsUnknownName(t *testing.T) {
	if _, err := ParseSection("tiktok"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestParseSectionNormalizesCase(t *testing.T) {
	section, err := ParseSection(" LinkedIn ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if section != SectionLinkedIn {
		t.Fatalf("unexpected section: %q", section)
	}
}
