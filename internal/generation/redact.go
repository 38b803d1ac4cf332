package generation

import "github.com/mimosaworkshops/testimonial-api/internal/testimonial"

// Placeholder tokens substituted for identity fields when anonymization is
// requested. These exact strings appear in published drafts, so keep them
// reader-facing.
const (
	AnonymousNamePlaceholder    = "[Anonymized]"
	AnonymousCompanyPlaceholder = "[Anonymized Org]"
)

// redactForRequest returns a request-time copy of the entry with the
// identity-bearing fields replaced by placeholders when the participant asked
// for anonymization. The stored entry is never touched: redaction exists only
// on the wire to the provider.
func redactForRequest(entry testimonial.Entry) testimonial.Entry {
	redacted := entry.Clone()
	if !entry.Anonymize {
		return redacted
	}
	redacted.ParticipantName = AnonymousNamePlaceholder
	redacted.Company = AnonymousCompanyPlaceholder
	return redacted
}
