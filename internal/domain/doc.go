// Package domain models community-submitted points of interest ("gems") and
// the best-effort lookups that enrich them.
//
// # Records
//
// A [Gem] is created either by a full list load or by a successful
// submission. Its identity is the backend-assigned ID. Raw list and create
// payloads are normalized by [NormalizeGem]:
//
//	submittedBy  local part of the attached user's email ("priya@x.in" → "priya"),
//	             "Anonymous" when no user (or no email) is attached
//	image        copied verbatim, empty when absent
//	lat/lng      copied only when BOTH are finite JSON numbers
//
// # Image set-once rule
//
// Once a gem's image is non-empty it is never overwritten for that identity.
// The rule is enforced by the store, not here; the domain only describes it.
//
// # Lookups
//
// Third-party lookups never fail from the caller's point of view. Providers
// are fallible (they return errors), resolvers wrap them into a [Task] whose
// single reply is a [Lookup]: Found(value) or NotFound. Network errors, rate
// limits, timeouts and "nothing matched" all collapse to NotFound.
package domain
