// Package worker serves requests that arrive through a file channel.
//
// # Overview
//
// A Worker polls its request file on a fixed interval. When the content
// differs from what it processed last, it decodes the request, runs the
// handler registered for the request's kind and writes the result to its
// response file. One request is in flight at a time; requests written while
// a handler runs are seen on the next tick.
//
// # Failure policy
//
//   - Undecodable file content is logged and skipped. The loop keeps going
//     and the previous response stays where it is.
//   - A decodable request that cannot be served (unknown kind, bad body,
//     handler error) gets an error response carrying the request id, so the
//     requester fails fast instead of timing out.
//   - Write failures are logged; the next tick carries on.
//
// # Restart safety
//
// Request ids already answered are remembered in a bounded set, primed on
// startup from the response file. A restarted worker therefore does not
// re-serve the request whose answer is still sitting on disk.
package worker
