// Package webhook implements real-time event intake from the outreach
// providers.
//
// Each provider posts engagement events (sent, opened, clicked, replied,
// bounced, unsubscribed, category changed) to a per-provider endpoint. The
// pipeline is: signature verification over the raw body, normalization of
// the provider payload into a canonical Event, campaign resolution by
// platform id, an idempotent insert into the event log keyed by
// (provider, event_id), and a typed dispatch that updates activities and
// counters. Counter updates go exclusively through the atomic database
// functions; this package never reads a counter to write it back.
//
// The service layer depends on the store interfaces defined in
// repository.go and never imports net/http or database/sql directly.
package webhook
