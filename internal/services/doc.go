// Package services contains the HTTP layer of the migration engine: the
// per-tool gateway, steady-state request pacing, 429 retry, page-based
// listing, and the entity group adapters for both time-tracking tools.
//
// Layering, bottom up:
//
//   - [Gateway] builds and performs one request against one tool, normalizing
//     the response into an [APIResponse] and non-2xx statuses into [APIError].
//   - [Pacer] enforces the mandatory inter-request delay per tool.
//   - [WithRetry] retries rate-limited (429) calls with a fixed backoff.
//   - [Client] composes the three for adapter use.
//   - [GroupAdapter] implementations translate between each tool's wire
//     schema and [models.Record], one type per (tool, entity group) pair,
//     collected in a [Registry].
package services
