package generation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
)

// DefaultBrandName is used when no brand is configured.
const DefaultBrandName = "Mimosa Workshops"

// promptInput is the slice of an entry serialized into the instruction block:
// identity, narrative, and generation configuration. Attachments stay out of
// the prompt (encoded blobs carry no signal for the copywriter), and so do
// the consent flags.
type promptInput struct {
	ParticipantName     string `json:"participantName"`
	RoleTitle           string `json:"roleTitle"`
	Company             string `json:"company,omitempty"`
	Location            string `json:"location,omitempty"`
	BackgroundBio       string `json:"backgroundBio"`
	GoalsBeforeWorkshop string `json:"goalsBeforeWorkshop"`
	WhatTheyBuilt       string `json:"whatTheyBuilt"`
	HowItWorks          string `json:"howItWorks"`
	FavoriteMoment      string `json:"favoriteMoment"`
	BiggestBreakthrough string `json:"biggestBreakthrough"`
	ResultsMetrics      string `json:"resultsMetrics"`
	WhoShouldAttend     string `json:"whoShouldAttend"`
	QuotePull           string `json:"quotePull"`
	ScreenshotCount     int    `json:"screenshotCount"`

	Tone       testimonial.Tone     `json:"tone"`
	Length     testimonial.Length   `json:"length"`
	CTAStyle   testimonial.CTAStyle `json:"ctaStyle"`
	BrandVoice string               `json:"brandVoice"`

	CreatedAt time.Time `json:"createdAt"`
}

// BuildPrompt composes the instruction block sent to the provider. Redaction
// is applied here, so callers hand in the entry exactly as stored. The
// construction is deterministic: the same entry always yields the same
// instruction text.
func BuildPrompt(brandName string, entry testimonial.Entry) (string, error) {
	if brandName == "" {
		brandName = DefaultBrandName
	}
	redacted := redactForRequest(entry)

	input := promptInput{
		ParticipantName:     redacted.ParticipantName,
		RoleTitle:           redacted.RoleTitle,
		Company:             redacted.Company,
		Location:            redacted.Location,
		BackgroundBio:       redacted.BackgroundBio,
		GoalsBeforeWorkshop: redacted.GoalsBeforeWorkshop,
		WhatTheyBuilt:       redacted.WhatTheyBuilt,
		HowItWorks:          redacted.HowItWorks,
		FavoriteMoment:      redacted.FavoriteMoment,
		BiggestBreakthrough: redacted.BiggestBreakthrough,
		ResultsMetrics:      redacted.ResultsMetrics,
		WhoShouldAttend:     redacted.WhoShouldAttend,
		QuotePull:           redacted.QuotePull,
		ScreenshotCount:     len(redacted.Screenshots),
		Tone:                redacted.Tone,
		Length:              redacted.Length,
		CTAStyle:            redacted.CTAStyle,
		BrandVoice:          redacted.BrandVoice,
		CreatedAt:           redacted.CreatedAt,
	}

	serialized, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("generation: serialize prompt input: %w", err)
	}

	prompt := fmt.Sprintf(`Act as a world-class marketing copywriter and brand strategist for %q.
Your task is to generate four types of testimonials based on the following participant data:
%s

Brand Voice Guidelines: %s
Tone: %s
Target Length: %s
CTA Style: %s

Output Requirements:
1. Blog Post: Long-form narrative with sections (Hook, Before, What I built, How it works with screenshot placeholders like [Screenshot 1: Description], What surprised me, Who this is for, Closing).
2. LinkedIn: Professional, high-converting with hook and bullets.
3. X (Twitter) Thread: 5-10 engaging tweets starting with a strong hook.
4. Email: Referral style to a friend or manager with 3 subject line options.

Strictly follow the JSON schema provided. Do not invent metrics; use provided ones or speak about "early results".`,
		brandName, serialized, redacted.BrandVoice, redacted.Tone, redacted.Length, redacted.CTAStyle)

	return prompt, nil
}
