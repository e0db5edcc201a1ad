package universe

import (
	"strings"

	"github.com/pkg/errors"
)

//Topology defines how neighbours are resolved at the board edges
type Topology int

const (
	//Torus wraps rows and columns to the opposite edge
	Torus Topology = iota
	//Bounded treats every position off the board as dead
	Bounded
)

var ErrUnknownTopology = errors.New("unknown topology")

var topologyNames = map[Topology]string{
	Torus:   "torus",
	Bounded: "bounded",
}

func (t Topology) String() string {
	if n, ok := topologyNames[t]; ok {
		return n
	}
	return "unknown"
}

//ParseTopology returns the topology for its name
func ParseTopology(name string) (Topology, error) {
	for t, n := range topologyNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return Torus, errors.Wrapf(ErrUnknownTopology, "%q", name)
}

//Survives applies Conway's rules to one cell
func Survives(living bool, neighbours int) bool {
	switch {
	case !living && neighbours == 3:
		return true
	case living && neighbours < 2:
		return false
	case living && neighbours > 3:
		return false
	case living:
		return true
	}
	return false
}

//LiveNeighbours counts the living neighbours of cell id on a width-wide board
//it is 0 when width does not split cells into full rows
func LiveNeighbours(cells []Cell, width int, id int, topology Topology) int {
	if !fillsRows(len(cells), width) {
		return 0
	}
	height := len(cells) / width
	col := id % width
	row := id / width
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := col+dx, row+dy
			if topology == Torus {
				nx = (nx + width) % width
				ny = (ny + height) % height
			} else if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if cells[ny*width+nx].Living {
				n++
			}
		}
	}
	return n
}

//NextGeneration computes the next generation from a single snapshot
//the input is not modified, the result has the same ids in the same order
//a width that does not split cells into full rows yields an unchanged copy
func NextGeneration(cells []Cell, width int, topology Topology) []Cell {
	next := make([]Cell, len(cells))
	NextGenerationInto(next, cells, width, topology)
	return next
}

//NextGenerationInto writes the next generation of src into dst
//dst must have the length of src and must not share its backing array
func NextGenerationInto(dst, src []Cell, width int, topology Topology) (live int, changed bool) {
	if !fillsRows(len(src), width) {
		copy(dst, src)
		return LiveCells(src), false
	}
	for i, c := range src {
		living := Survives(c.Living, LiveNeighbours(src, width, i, topology))
		if living {
			live++
		}
		changed = changed || living != c.Living
		dst[i] = Cell{ID: c.ID, Living: living}
	}
	return
}

func fillsRows(n, width int) bool {
	return width > 0 && n > 0 && n%width == 0
}
