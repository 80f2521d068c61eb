// Package board generates minesweeper boards and speaks their text format.
//
// Request text is "width height bombs". Board text is width*height cells,
// each 0 or 1, space separated, row-major.
package board

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/billie-coop/minefile/internal/protocol"
)

// MaxCells caps width*height so a hostile request cannot exhaust memory.
const MaxCells = 1 << 20

// Request asks for a board.
type Request struct {
	Width  int
	Height int
	Bombs  int
}

// String renders the request text.
func (r Request) String() string {
	return fmt.Sprintf("%d %d %d", r.Width, r.Height, r.Bombs)
}

// Cells returns width*height.
func (r Request) Cells() int { return r.Width * r.Height }

// Validate checks dimensions and bomb count.
func (r Request) Validate() error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("board must be at least 1x1, got %dx%d", r.Width, r.Height)
	}
	if r.Width > MaxCells/r.Height {
		return fmt.Errorf("board %dx%d exceeds %d cells", r.Width, r.Height, MaxCells)
	}
	if r.Bombs < 0 || r.Bombs > r.Cells() {
		return fmt.Errorf("bomb count %d out of range [0, %d]", r.Bombs, r.Cells())
	}
	return nil
}

// ParseRequest decodes "width height bombs".
func ParseRequest(text string) (Request, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Request{}, protocol.NewParseError("board request", []byte(text),
			fmt.Errorf("want 3 integers, got %d fields", len(fields)))
	}

	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Request{}, protocol.NewParseError("board request", []byte(text), err)
		}
		nums[i] = n
	}

	req := Request{Width: nums[0], Height: nums[1], Bombs: nums[2]}
	if err := req.Validate(); err != nil {
		return Request{}, protocol.NewParseError("board request", []byte(text), err)
	}
	return req, nil
}

// Board is a generated minefield. Cells[y*Width+x] is 1 for a bomb.
type Board struct {
	Width  int
	Height int
	Cells  []int
}

// Generate places req.Bombs bombs on distinct cells chosen uniformly at
// random, without replacement.
func Generate(rng *rand.Rand, req Request) (Board, error) {
	if err := req.Validate(); err != nil {
		return Board{}, err
	}
	if rng == nil {
		return Board{}, errors.New("nil random source")
	}

	n := req.Cells()
	cells := make([]int, n)

	// Partial Fisher-Yates: the first Bombs slots of idx end up a uniform
	// sample of all indices.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < req.Bombs; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		cells[idx[i]] = 1
	}

	return Board{Width: req.Width, Height: req.Height, Cells: cells}, nil
}

// Bombs counts the bomb cells.
func (b Board) Bombs() int {
	count := 0
	for _, c := range b.Cells {
		count += c
	}
	return count
}

// At reports whether (x, y) holds a bomb.
func (b Board) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Cells[y*b.Width+x] == 1
}

// String renders the response text.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(len(b.Cells) * 2)
	for i, c := range b.Cells {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// ParseBoard decodes response text for the board req asked for.
func ParseBoard(text string, req Request) (Board, error) {
	fields := strings.Fields(text)
	if len(fields) != req.Cells() {
		return Board{}, protocol.NewParseError("board", []byte(text),
			fmt.Errorf("want %d cells, got %d", req.Cells(), len(fields)))
	}

	cells := make([]int, len(fields))
	for i, f := range fields {
		switch f {
		case "0":
		case "1":
			cells[i] = 1
		default:
			return Board{}, protocol.NewParseError("board", []byte(text),
				fmt.Errorf("cell %d is %q, want 0 or 1", i, f))
		}
	}
	return Board{Width: req.Width, Height: req.Height, Cells: cells}, nil
}
