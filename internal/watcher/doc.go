// Package watcher turns file system events into debounced wake-up pulses.
//
// # Overview
//
// Channel files are polled, and polling alone is correct. It is also slow:
// a worker polling every 3 seconds adds up to 3 seconds of latency to every
// request. This package watches the directory that holds a channel file and
// pulses as soon as the file is replaced, so the poller can look early.
//
// # Key Features
//
//   - Debounced change detection (a burst of events becomes one pulse)
//   - Temp and hidden files are ignored, so an atomic write produces a
//     single pulse for the rename, not one per intermediate write
//   - Pulses never block: a buffered channel of size one coalesces them
//
// # Architecture
//
//   - Debouncer: coalesces bursts into one fire
//   - Notifier: fsnotify source feeding a Debouncer for one path
//
// # Integration
//
//	n, err := watcher.Notify("board.txt", 50*time.Millisecond, logger)
//	if err == nil {
//	    defer n.Close()
//	    ch := channel.New("board.txt", channel.WithNotify(n.C()))
//	}
//
// A missed event costs at most one poll interval, never correctness.
package watcher
