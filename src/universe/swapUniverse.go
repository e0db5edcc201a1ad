package universe

/*
	Universe implementation with two buffers
	the next generation is calculated into the back buffer and then the buffers are swapped,
	so no board is allocated per generation
*/
type SwapUniverse struct {
	*BaseUniverse
	back  []Cell
	swaps int
}

func NewSwapUniverse(o *Options, stateCh chan Status) Universe {
	su := SwapUniverse{BaseUniverse: NewBaseUniverse(o, stateCh)}
	//redefine the nextIteration
	su.BaseUniverse.nextIteration = su.nextIteration
	su.BaseUniverse.iterationDetails = su.iterationDetails
	su.back = make([]Cell, su.options.Width*su.options.Height)
	su.options.Advanced["engine"] = "swap"
	return &su
}

func (su *SwapUniverse) nextIteration() (liveCells int, changed bool) {
	liveCells, changed = NextGenerationInto(su.back, su.board.cells, su.options.Width, su.options.Topology)
	su.board.cells, su.back = su.back, su.board.cells
	su.swaps++
	return
}

func (su *SwapUniverse) iterationDetails() map[string]interface{} {
	return map[string]interface{}{"bufferSwaps": su.swaps}
}
