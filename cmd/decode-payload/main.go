// Command decode-payload prints what is currently in channel files, for
// debugging a requester and worker that disagree.
//
//	decode-payload                      # every configured channel
//	decode-payload -codec cbor f.bin    # specific files
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/config"
	"github.com/billie-coop/minefile/internal/protocol"
	"github.com/billie-coop/minefile/internal/protocol/codec"
)

func main() {
	dir := flag.String("dir", config.DirName, "data directory (when no files are given)")
	codecName := flag.String("codec", "", "json or cbor (default from config)")
	framingName := flag.String("framing", "", "envelope or raw (default from config)")
	flag.Parse()

	m := config.NewManager(*dir)
	files := flag.Args()
	if len(files) == 0 {
		if err := m.Load(); err != nil {
			log.Fatal(err)
		}
		files = channelFiles(m)
	}

	cfg := m.Get()
	if *codecName == "" {
		*codecName = cfg.Protocol.Codec
	}
	if *framingName == "" {
		*framingName = cfg.Protocol.Framing
	}

	framing, err := protocol.ParseFraming(*framingName)
	if err != nil {
		log.Fatal(err)
	}
	c, err := codec.NewRegistry().Get(*codecName)
	if err != nil {
		log.Fatal(err)
	}

	failed := false
	for _, path := range files {
		if err := decode(os.Stdout, path, framing, c); err != nil {
			fmt.Printf("ERROR: %v\n\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// channelFiles lists each configured file once.
func channelFiles(m *config.Manager) []string {
	seen := make(map[string]bool)
	var files []string
	for _, ch := range m.Get().Channels {
		for _, p := range []string{ch.Request, ch.Response} {
			p = m.Resolve(p)
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}
	return files
}

func decode(w io.Writer, path string, framing protocol.Framing, c codec.Codec) error {
	data, err := channel.New(path).Read()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d bytes)\n", path, len(data))
	fmt.Fprintln(w, "─────────")

	env, err := protocol.Decode(framing, c, data)
	if err != nil {
		return err
	}
	printEnvelope(w, framing, env)
	fmt.Fprintln(w)
	return nil
}

func printEnvelope(w io.Writer, framing protocol.Framing, env *protocol.Envelope) {
	if framing == protocol.FramingRaw {
		fmt.Fprintf(w, "Body: %q\n", truncate(env.Body, 60))
		return
	}
	fmt.Fprintf(w, "Type: %s\n", env.Type)
	fmt.Fprintf(w, "ID: %s\n", env.ID)
	fmt.Fprintf(w, "Seq: %d\n", env.Seq)
	fmt.Fprintf(w, "Kind: %s\n", env.Kind)
	if env.IsResponse() {
		fmt.Fprintf(w, "Status: %s\n", env.Status)
	}
	if env.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", env.Error)
	}
	fmt.Fprintf(w, "Body: %q\n", truncate(env.Body, 60))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
