package intake

import "github.com/mimosaworkshops/testimonial-api/internal/testimonial"

// FieldPatch is a partial set of draft field values. Nil pointers mean "leave
// unchanged", so applying a patch merges instead of replacing: a later patch
// for one field never erases an earlier value of another. Identifier,
// creation time, and attachments are not patchable; attachments go through
// AttachFile and RemoveScreenshot.
type FieldPatch struct {
	ParticipantName *string `json:"participantName"`
	RoleTitle       *string `json:"roleTitle"`
	Company         *string `json:"company"`
	Location        *string `json:"location"`
	BackgroundBio   *string `json:"backgroundBio"`

	GoalsBeforeWorkshop *string `json:"goalsBeforeWorkshop"`
	WhatTheyBuilt       *string `json:"whatTheyBuilt"`
	HowItWorks          *string `json:"howItWorks"`
	FavoriteMoment      *string `json:"favoriteMoment"`
	BiggestBreakthrough *string `json:"biggestBreakthrough"`
	ResultsMetrics      *string `json:"resultsMetrics"`
	WhoShouldAttend     *string `json:"whoShouldAttend"`
	QuotePull           *string `json:"quotePull"`

	ConsentToUse *bool `json:"consentToUse"`
	AllowNameUse *bool `json:"allowNameUse"`
	Anonymize    *bool `json:"anonymize"`

	Tone       *testimonial.Tone     `json:"tone"`
	Length     *testimonial.Length   `json:"length"`
	CTAStyle   *testimonial.CTAStyle `json:"ctaStyle"`
	BrandVoice *string               `json:"brandVoice"`
}

// Validate rejects enum values outside the supported sets. Text fields are
// free-form and always legal.
func (p FieldPatch) Validate() error {
	if p.Tone != nil {
		if _, err := testimonial.ParseTone(string(*p.Tone)); err != nil {
			return err
		}
	}
	if p.Length != nil {
		if _, err := testimonial.ParseLength(string(*p.Length)); err != nil {
			return err
		}
	}
	if p.CTAStyle != nil {
		if _, err := testimonial.ParseCTAStyle(string(*p.CTAStyle)); err != nil {
			return err
		}
	}
	return nil
}

func (p FieldPatch) applyTo(draft *Draft) {
	if p.ParticipantName != nil {
		draft.ParticipantName = *p.ParticipantName
	}
	if p.RoleTitle != nil {
		draft.RoleTitle = *p.RoleTitle
	}
	if p.Company != nil {
		draft.Company = *p.Company
	}
	if p.Location != nil {
		draft.Location = *p.Location
	}
	if p.BackgroundBio != nil {
		draft.BackgroundBio = *p.BackgroundBio
	}
	if p.GoalsBeforeWorkshop != nil {
		draft.GoalsBeforeWorkshop = *p.GoalsBeforeWorkshop
	}
	if p.WhatTheyBuilt != nil {
		draft.WhatTheyBuilt = *p.WhatTheyBuilt
	}
	if p.HowItWorks != nil {
		draft.HowItWorks = *p.HowItWorks
	}
	if p.FavoriteMoment != nil {
		draft.FavoriteMoment = *p.FavoriteMoment
	}
	if p.BiggestBreakthrough != nil {
		draft.BiggestBreakthrough = *p.BiggestBreakthrough
	}
	if p.ResultsMetrics != nil {
		draft.ResultsMetrics = *p.ResultsMetrics
	}
	if p.WhoShouldAttend != nil {
		draft.WhoShouldAttend = *p.WhoShouldAttend
	}
	if p.QuotePull != nil {
		draft.QuotePull = *p.QuotePull
	}
	if p.ConsentToUse != nil {
		draft.ConsentToUse = *p.ConsentToUse
	}
	if p.AllowNameUse != nil {
		draft.AllowNameUse = *p.AllowNameUse
	}
	if p.Anonymize != nil {
		draft.Anonymize = *p.Anonymize
	}
	if p.Tone != nil {
		draft.Tone = *p.Tone
	}
	if p.Length != nil {
		draft.Length = *p.Length
	}
	if p.CTAStyle != nil {
		draft.CTAStyle = *p.CTAStyle
	}
	if p.BrandVoice != nil {
		draft.BrandVoice = *p.BrandVoice
	}
}
