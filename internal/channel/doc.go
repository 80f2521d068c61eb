// Package channel turns a plain file into a request/response transport.
//
// # Overview
//
// Two processes share nothing but a path. One side rewrites the file, the
// other re-reads it on a fixed cadence and notices that it changed. This
// package is the single implementation of that dance for both sides.
//
// # Rules
//
//   - Every write goes to a temp file in the same directory and is renamed
//     over the target, so a reader sees the old content or the new content,
//     never half of each.
//   - Change detection compares content, not modification time. Two writes
//     of identical bytes are no change; an mtime bump without new bytes is
//     no change either.
//   - A missing file is a valid state (nothing written yet), not an error.
//
// # Example
//
//	ch := channel.New("board.txt", channel.WithPollInterval(time.Second))
//	base, _ := ch.Snapshot()
//	if err := ch.Write([]byte("5 5 3")); err != nil { ... }
//	snap, err := ch.PollForChange(ctx, base, 10*time.Second)
//	if errors.Is(err, channel.ErrTimedOut) { ... }
package channel
