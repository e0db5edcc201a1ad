package universe

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCellOutOfRange = errors.New("cell id out of range")
	ErrMalformedBoard = errors.New("malformed board")
)

//Cell is one position of the board
//ID is the index into the flattened board (row*width + col) and never changes
type Cell struct {
	ID     int  `json:"id"`
	Living bool `json:"living"`
}

//Initialize creates n dead cells with ids 0..n-1
func Initialize(n int) []Cell {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i].ID = i
	}
	return cells
}

//NewRand returns the PCG source used to settle the board
//seed 0 seeds from the clock
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

//Randomize returns a copy of cells where every cell is a coin flip
func Randomize(cells []Cell, rng *rand.Rand) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{ID: c.ID, Living: rng.IntN(2) == 1}
	}
	return out
}

//KillAll returns a copy of cells with every cell dead
func KillAll(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{ID: c.ID}
	}
	return out
}

//Toggle returns a copy of cells with the cell id flipped
//the input is returned untouched together with ErrCellOutOfRange for unknown ids
func Toggle(cells []Cell, id int) ([]Cell, error) {
	if id < 0 || id >= len(cells) {
		return cells, errors.Wrapf(ErrCellOutOfRange, "toggle %d of %d", id, len(cells))
	}
	out := make([]Cell, len(cells))
	copy(out, cells)
	out[id].Living = !out[id].Living
	return out, nil
}

//LiveCells counts the living cells
func LiveCells(cells []Cell) (n int) {
	for _, c := range cells {
		if c.Living {
			n++
		}
	}
	return
}

//Validate checks that cells form a width-wide board with contiguous ids
func Validate(cells []Cell, width int) error {
	if width <= 0 {
		return errors.Wrapf(ErrMalformedBoard, "width %d", width)
	}
	if len(cells) == 0 || len(cells)%width != 0 {
		return errors.Wrapf(ErrMalformedBoard, "%d cells do not fill rows of %d", len(cells), width)
	}
	for i, c := range cells {
		if c.ID != i {
			return errors.Wrapf(ErrMalformedBoard, "cell at %d has id %d", i, c.ID)
		}
	}
	return nil
}

func copyCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	copy(out, cells)
	return out
}
