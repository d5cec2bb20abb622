// Package acl is the anti-corruption layer between the quote configuration
// document and the domain.
//
// The document is the JSON object
//
//	{"pinnedQuoteText": "...", "quotes": [{"text": "...", "author": "...", "imageUrl": "..."}]}
//
// and is read either from a local file ([FileSource]) or over HTTP
// ([QuoteConfigClient]). Both decode into unexported DTOs and translate them
// into [domain.QuoteConfig], so the document's field names never leave this
// package.
//
// # Translation rules
//
//   - quote order is preserved
//   - a blank text rejects the whole document as a validation error
//   - a repeated text keeps its first occurrence and logs a warning
//   - a pinned text that matches no quote is kept and logged
//
// # Errors
//
// Fetch failures become domain errors through [MapHTTPError]:
//   - 404 → [domain.ErrNotFound]
//   - 400/422 and malformed documents → [domain.ErrValidation]
//   - 401/403/429/5xx, transport errors, an open circuit and exhausted
//     retries → [domain.ErrUnavailable]
package acl
