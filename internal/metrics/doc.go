// Package metrics holds the process-wide counters and serves them.
//
// Key metrics:
//   - Members created and failed record-store writes
//   - Failed interaction acknowledgements
//   - Time of the last gateway frame processed (drives /livez)
//   - Dispatch task throughput, rejections and failures
//   - Gateway reconnects and dropped frames
//
// A single *Metrics value is created by the caller and passed to every
// component that reports. All operations are safe for concurrent use.
package metrics
