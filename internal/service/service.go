// Package service binds board generation and word counting to the file
// channel: handlers for the worker side, a typed client for the requester
// side.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/billie-coop/minefile/internal/board"
	"github.com/billie-coop/minefile/internal/requester"
	"github.com/billie-coop/minefile/internal/wordcount"
	"github.com/billie-coop/minefile/internal/worker"
)

// Request kinds.
const (
	KindBoard     = "board"
	KindWordCount = "wordcount"
)

// Kinds lists every kind this service knows.
var Kinds = []string{KindBoard, KindWordCount}

// BoardHandler generates boards from rng. rng is guarded by a mutex since
// a handler may be shared by several workers.
func BoardHandler(rng *rand.Rand) worker.Handler {
	var mu sync.Mutex
	return func(_ context.Context, body string) (string, error) {
		req, err := board.ParseRequest(body)
		if err != nil {
			return "", err
		}
		mu.Lock()
		b, err := board.Generate(rng, req)
		mu.Unlock()
		if err != nil {
			return "", err
		}
		return b.String(), nil
	}
}

// WordCountHandler counts whitespace separated words.
func WordCountHandler() worker.Handler {
	return func(_ context.Context, body string) (string, error) {
		return wordcount.Format(wordcount.Count(body)), nil
	}
}

// Register installs the handler for each of kinds on w.
func Register(w *worker.Worker, rng *rand.Rand, kinds ...string) error {
	boardHandler := BoardHandler(rng)
	for _, kind := range kinds {
		switch kind {
		case KindBoard:
			w.Handle(kind, boardHandler)
		case KindWordCount:
			w.Handle(kind, WordCountHandler())
		default:
			return fmt.Errorf("unknown kind %q", kind)
		}
	}
	return nil
}

// Client is the requester-side API. Each kind may use its own channel
// pair, hence one Requester per kind.
type Client struct {
	Boards *requester.Requester
	Counts *requester.Requester
}

// Board asks the worker for a board.
func (c *Client) Board(ctx context.Context, req board.Request) (board.Board, error) {
	if c.Boards == nil {
		return board.Board{}, fmt.Errorf("no %s channel configured", KindBoard)
	}
	if err := req.Validate(); err != nil {
		return board.Board{}, err
	}
	resp, err := c.Boards.Request(ctx, KindBoard, req.String())
	if err != nil {
		return board.Board{}, err
	}
	return board.ParseBoard(resp.Body, req)
}

// WordCount asks the worker to count words in text.
func (c *Client) WordCount(ctx context.Context, text string) (int, error) {
	if c.Counts == nil {
		return 0, fmt.Errorf("no %s channel configured", KindWordCount)
	}
	resp, err := c.Counts.Request(ctx, KindWordCount, text)
	if err != nil {
		return 0, err
	}
	return wordcount.Parse(resp.Body)
}
