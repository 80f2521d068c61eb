// Package csync provides small thread-safe collections.
//
// Map guards a generic map with a RWMutex. Recent remembers the last N
// distinct keys, forgetting the oldest first; workers use it to remember
// which request ids they already served without growing forever.
//
//	handlers := csync.NewMap[string, Handler]()
//	handlers.Set("board", boardHandler)
//
//	served := csync.NewRecent[string](256)
//	served.Add(id)
//	if served.Has(id) {
//		// duplicate
//	}
package csync
