package intake

import (
	"time"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
)

// Default generation settings applied to every new draft. Participants rarely
// touch these, so the seed values match what the workshop team actually wants.
const (
	defaultBrandVoice = "builder energy, optimistic, practical, no cringe"
)

// Draft is the partially-populated record accumulated during intake. Every
// field is legal in every state; completeness is never enforced before
// generation. The draft is distinct from testimonial.Entry so that the store
// only ever sees records that went through BuildEntry.
type Draft struct {
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

	Tone       testimonial.Tone     `json:"tone"`
	Length     testimonial.Length   `json:"length"`
	CTAStyle   testimonial.CTAStyle `json:"ctaStyle"`
	BrandVoice string               `json:"brandVoice"`

	Screenshots  []string `json:"screenshots"`
	DocumentData string   `json:"prdFileUrl,omitempty"`
}

// NewDraft seeds a draft with the identifier, creation time, and default
// generation settings.
func NewDraft(id string, createdAt time.Time) Draft {
	return Draft{
		ID:           id,
		CreatedAt:    createdAt,
		ConsentToUse: true,
		AllowNameUse: true,
		Anonymize:    false,
		Tone:         testimonial.ToneProfessional,
		Length:       testimonial.LengthMedium,
		CTAStyle:     testimonial.CTAStyleSoft,
		BrandVoice:   defaultBrandVoice,
		Screenshots:  []string{},
	}
}

// DraftFromEntry seeds a draft from a stored entry so a finalized record can
// be edited and regenerated. The stored output bundle stays on the stored
// record; it is never carried into intake.
func DraftFromEntry(entry testimonial.Entry) Draft {
	screenshots := make([]string, len(entry.Screenshots))
	copy(screenshots, entry.Screenshots)
	return Draft{
		ID:                  entry.ID,
		CreatedAt:           entry.CreatedAt,
		ParticipantName:     entry.ParticipantName,
		RoleTitle:           entry.RoleTitle,
		Company:             entry.Company,
		Location:            entry.Location,
		BackgroundBio:       entry.BackgroundBio,
		GoalsBeforeWorkshop: entry.GoalsBeforeWorkshop,
		WhatTheyBuilt:       entry.WhatTheyBuilt,
		HowItWorks:          entry.HowItWorks,
		FavoriteMoment:      entry.FavoriteMoment,
		BiggestBreakthrough: entry.BiggestBreakthrough,
		ResultsMetrics:      entry.ResultsMetrics,
		WhoShouldAttend:     entry.WhoShouldAttend,
		QuotePull:           entry.QuotePull,
		ConsentToUse:        entry.ConsentToUse,
		AllowNameUse:        entry.AllowNameUse,
		Anonymize:           entry.Anonymize,
		Tone:                entry.Tone,
		Length:              entry.Length,
		CTAStyle:            entry.CTAStyle,
		BrandVoice:          entry.BrandVoice,
		Screenshots:         screenshots,
		DocumentData:        entry.DocumentData,
	}
}

// BuildEntry converts the draft into a storable entry, enforcing the
// structural invariants. Narrative completeness is deliberately not checked:
// empty fields produce a weaker generation, not an error.
func (d Draft) BuildEntry() (testimonial.Entry, error) {
	screenshots := make([]string, len(d.Screenshots))
	copy(screenshots, d.Screenshots)
	entry := testimonial.Entry{
		ID:                  d.ID,
		CreatedAt:           d.CreatedAt,
		ParticipantName:     d.ParticipantName,
		RoleTitle:           d.RoleTitle,
		Company:             d.Company,
		Location:            d.Location,
		BackgroundBio:       d.BackgroundBio,
		GoalsBeforeWorkshop: d.GoalsBeforeWorkshop,
		WhatTheyBuilt:       d.WhatTheyBuilt,
		HowItWorks:          d.HowItWorks,
		FavoriteMoment:      d.FavoriteMoment,
		BiggestBreakthrough: d.BiggestBreakthrough,
		ResultsMetrics:      d.ResultsMetrics,
		WhoShouldAttend:     d.WhoShouldAttend,
		QuotePull:           d.QuotePull,
		ConsentToUse:        d.ConsentToUse,
		AllowNameUse:        d.AllowNameUse,
		Anonymize:           d.Anonymize,
		Tone:                d.Tone,
		Length:              d.Length,
		CTAStyle:            d.CTAStyle,
		BrandVoice:          d.BrandVoice,
		Screenshots:         screenshots,
		DocumentData:        d.DocumentData,
	}
	if err := entry.Validate(); err != nil {
		return testimonial.Entry{}, err
	}
	return entry, nil
}

func (d Draft) clone() Draft {
	clone := d
	clone.Screenshots = make([]string, len(d.Screenshots))
	copy(clone.Screenshots, d.Screenshots)
	return clone
}
