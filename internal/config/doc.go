// Package config provides local-first configuration for minefile.
//
// All configuration lives in the .minefile/ data directory:
//
//	.minefile/
//	├── config.json        # Settings (created with defaults on first run)
//	├── .gitignore         # Keeps channel files and logs out of git
//	├── board.txt          # Board channel (request and response)
//	├── wordcount.txt      # Word count requests
//	├── wordcount.out.txt  # Word count responses
//	└── journal_entries/   # One JSON file per entry
//
// config.json:
//
//	{
//	  "first_time": true,
//	  "protocol": {"framing": "envelope", "codec": "json"},
//	  "worker": {"poll_interval": "3s", "served_capacity": 256, "notify": true, "debounce": "50ms"},
//	  "requester": {"poll_interval": "1s", "timeout": "30s"},
//	  "channels": [
//	    {"kind": "board", "request": "board.txt", "response": "board.txt"},
//	    {"kind": "wordcount", "request": "wordcount.txt", "response": "wordcount.out.txt"}
//	  ],
//	  ...
//	}
//
// Environment Variable Support:
//
// Any key can be overridden with a MINEFILE_ variable, dots becoming
// underscores (MINEFILE_REQUESTER_TIMEOUT=5s). Path values may reference
// environment variables using $VAR or ${VAR} syntax:
//
//	{"kind": "board", "request": "${SHARED}/board.txt", "response": "${SHARED}/board.txt"}
//
// Example usage:
//
//	manager := config.NewManager(config.DirName)
//	if err := manager.Load(); err != nil {
//		log.Fatal(err)
//	}
//	cfg := manager.Get()
//	path := manager.Resolve(cfg.Channels[0].Request)
package config
