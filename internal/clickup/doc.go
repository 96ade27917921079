// Package clickup is the resilient fetch client for the ClickUp v2 API.
//
// Every call goes through Client.Get, which retries a bounded set of
// transient faults (429, 502, 503, 504, network timeouts, refused
// connections) with exponential backoff plus jitter, and fails fast on
// everything else. Failures surface as a single *APIError whose Kind is one
// of a closed set:
//
//   - KindAuthentication: the token was rejected; abort the batch.
//   - KindShardRouting: the response carried a SHARD_* ECODE; the workspace
//     lives on another shard. Abort the batch.
//   - KindOther: a non-transient failure for this call only.
//   - KindTransientExhausted: every attempt hit a transient fault.
//
// Cancellation of the caller's context is never classified; it is returned
// as ctx.Err() and aborts any backoff sleep in progress.
package clickup
