// Package gateway implements the gateway session client.
//
// The gateway client:
//   - Maintains one websocket connection per Supervisor
//   - Identifies once per connection after the server Hello
//   - Sends heartbeats at the server-dictated interval and treats two
//     missed acknowledgements as a dead connection
//   - Tracks the last dispatched sequence number for heartbeats
//   - Hands application events to a Dispatcher without blocking
//   - Reconnects with exponential backoff, always with a fresh Session
package gateway
