// Package api provides the Discord REST client used next to the gateway.
//
// REST endpoints (relative to https://discord.com/api/v10):
//   - POST /applications/{application.id}/commands: register a slash command
//   - POST /interactions/{interaction.id}/{interaction.token}/callback: reply
//   - GET /gateway: discover the gateway websocket URL
//
// Requests authenticate with "Authorization: Bot <token>". Idempotent calls
// retry on 5xx and 429 with jittered exponential backoff; interaction
// callbacks are never retried.
package api
