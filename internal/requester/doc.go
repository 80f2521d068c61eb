// Package requester sends a request through a file channel and waits for
// the matching response.
//
// From the caller's side Request is synchronous. Underneath it writes the
// request file and polls the response file until a response carrying the
// same id shows up, the timeout expires, or a newer request on the same
// Requester supersedes it.
//
// Responses carrying a different id are stale: an answer to a request that
// timed out or was superseded. They are logged and discarded, never
// returned.
package requester
