package universe

import (
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

//Options represents the Universe's configurable options
type Options struct {
	Width    int
	Height   int
	Interval time.Duration
	Topology Topology
	Seed     int64                  //0 seeds the board from the clock
	Advanced map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	LiveCells     int
	Changed       bool //the last generation differs from the previous one
	IterationTime time.Duration
	Details       map[string]interface{} //advanced details (engine specific), nil until the first generation
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//RunningState is the run control state of the universe
type RunningState int

//default options
const (
	DefWidth    = 20
	DefHeight   = 20
	DefInterval = time.Second
)

const (
	RunningStateIdle RunningState = iota
	RunningStateRunning
	RunningStatePaused
)

var runningStateNames = map[RunningState]string{
	RunningStateIdle:    "idle",
	RunningStateRunning: "running",
	RunningStatePaused:  "paused",
}

func (s RunningState) String() string {
	if n, ok := runningStateNames[s]; ok {
		return n
	}
	return "unknown"
}

//DefaultOptions returns the shipped 20x20 board ticking once a second
func DefaultOptions() Options {
	return Options{
		Width:    DefWidth,
		Height:   DefHeight,
		Interval: DefInterval,
		Topology: Torus,
	}
}

//ticker is the handle of one periodic run
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func (t *ticker) cancel() {
	t.once.Do(func() { close(t.stop) })
}

//BaseUniverse is the base universe's engine
//implements Universe interface
//can be used to create different implementations by redefining nextIteration func
//every state change is executed by mainLoop, so the board has exactly one writer
type BaseUniverse struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	board struct {
		cells []Cell
		sync.Mutex
	}
	views struct {
		list []Viewer
		sync.Mutex
	}
	rng       *rand.Rand
	ticker    *ticker //nil unless running
	touched   bool    //a cell was toggled while idle, start keeps the board
	stateCh   chan Status
	controlCh chan func()
	done      chan struct{}
	closeOnce sync.Once
	//nextIteration replaces board.cells with the next generation, called with board locked
	nextIteration func() (liveCells int, changed bool)
	//iterationDetails adds engine specific entries to Status.Details after each generation
	iterationDetails func() map[string]interface{}
}

//NewBaseUniverse creates the BaseUniverse instance
func NewBaseUniverse(o *Options, stateCh chan Status) *BaseUniverse {
	opts := DefaultOptions()
	if o != nil {
		opts = *o
	}
	if opts.Width <= 0 {
		opts.Width = DefWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefHeight
	}
	if opts.Interval <= 0 {
		opts.Interval = DefInterval
	}
	opts.Advanced = map[string]interface{}{
		"engine":   "base",
		"topology": opts.Topology.String(),
	}

	u := BaseUniverse{
		options:   opts,
		rng:       NewRand(opts.Seed),
		stateCh:   stateCh,
		controlCh: make(chan func(), 1),
		done:      make(chan struct{}),
	}
	//nextIteration can be implemented by successor
	u.nextIteration = u._nextIteration
	u.board.cells = Initialize(opts.Width * opts.Height)
	go u.mainLoop()
	return &u
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	u.views.Lock()
	u.views.list = append(u.views.list, v)
	u.views.Unlock()
	v.Register(u)
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Cells returns a copy of the current board
func (u *BaseUniverse) Cells() []Cell {
	u.board.Lock()
	defer u.board.Unlock()
	return copyCells(u.board.cells)
}

//Snapshot returns the status and the board once every command issued before it is executed
func (u *BaseUniverse) Snapshot() (Status, []Cell) {
	type snapshot struct {
		st    Status
		cells []Cell
	}
	reply := make(chan snapshot, 1)
	u.send(func() {
		reply <- snapshot{u.Status(), u.Cells()}
	})
	select {
	case s := <-reply:
		return s.st, s.cells
	case <-u.done:
		return u.Status(), u.Cells()
	}
}

//Start starts ticking, returns immediately
//an idle board is randomized first unless a cell was toggled before the start
func (u *BaseUniverse) Start() {
	u.send(u.start)
}

//Pause stops ticking and keeps the board, returns immediately
func (u *BaseUniverse) Pause() {
	u.send(u.pause)
}

//Resume continues ticking from the current board, returns immediately
func (u *BaseUniverse) Resume() {
	u.send(u.resume)
}

//TogglePause pauses a running universe or resumes a paused one, returns immediately
func (u *BaseUniverse) TogglePause() {
	u.send(func() {
		switch u.mode() {
		case RunningStateRunning:
			u.pause()
		case RunningStatePaused:
			u.resume()
		}
	})
}

//Reset stops ticking and kills all cells, returns immediately
func (u *BaseUniverse) Reset() {
	u.send(u.reset)
}

//Step does one generation in any state, returns immediately
func (u *BaseUniverse) Step() {
	u.send(u.step)
}

//Toggle inverses the state of cell id, returns immediately
func (u *BaseUniverse) Toggle(id int) {
	u.send(func() { u.toggle(id) })
}

//ToggleAt inverses the cell state at point x, y
func (u *BaseUniverse) ToggleAt(x int, y int) {
	if x < 0 || y < 0 || x >= u.options.Width || y >= u.options.Height {
		log.WithFields(log.Fields{"x": x, "y": y}).Debug("toggle outside the board ignored")
		return
	}
	u.Toggle(y*u.options.Width + x)
}

//Close stops the main loop and every ticker, returns immediately
func (u *BaseUniverse) Close() {
	u.closeOnce.Do(func() { close(u.done) })
}

//send queues the command for mainLoop, dropped once the universe is closed
func (u *BaseUniverse) send(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.done:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	for {
		select {
		case cmd := <-u.controlCh:
			//both cases may be ready, a closed universe never executes
			select {
			case <-u.done:
				return
			default:
			}
			cmd()
		case <-u.done:
			return
		}
	}
}

func (u *BaseUniverse) mode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

func (u *BaseUniverse) start() {
	if u.mode() == RunningStateIdle && !u.touched {
		u.settle(Randomize(u.Cells(), u.rng))
	}
	u.startTicking()
	u.switchRunningState(RunningStateRunning)
}

func (u *BaseUniverse) pause() {
	if u.mode() != RunningStateRunning {
		return
	}
	u.stopTicking()
	u.switchRunningState(RunningStatePaused)
}

func (u *BaseUniverse) resume() {
	if u.mode() != RunningStatePaused {
		return
	}
	u.startTicking()
	u.switchRunningState(RunningStateRunning)
}

func (u *BaseUniverse) reset() {
	u.stopTicking()
	u.touched = false
	u.settle(KillAll(u.Cells()))
	u.state.Lock()
	u.state.Generation = 0
	u.state.Changed = false
	u.state.IterationTime = 0
	u.state.Details = nil
	u.state.Unlock()
	u.switchRunningState(RunningStateIdle)
}

func (u *BaseUniverse) toggle(id int) {
	u.board.Lock()
	cells, err := Toggle(u.board.cells, id)
	u.board.cells = cells
	live := LiveCells(cells)
	u.board.Unlock()
	if err != nil {
		log.WithError(err).Warn("toggle ignored")
		return
	}
	if u.mode() == RunningStateIdle {
		u.touched = true
	}
	u.state.Lock()
	u.state.LiveCells = live
	u.state.Unlock()
	u.publish()
}

//step does the new one generation calculation for entire universe
func (u *BaseUniverse) step() {
	start := time.Now()
	u.board.Lock()
	live, changed := u.nextIteration()
	u.board.Unlock()

	u.state.Lock()
	u.state.Generation++
	u.state.LiveCells = live
	u.state.Changed = changed
	u.state.IterationTime = time.Since(start)
	u.state.Details = u.details()
	u.state.Unlock()
	u.publish()
}

//details builds a new map per generation, published statuses are never modified
func (u *BaseUniverse) details() map[string]interface{} {
	d := map[string]interface{}{"engine": u.options.Advanced["engine"]}
	if u.iterationDetails != nil {
		for k, v := range u.iterationDetails() {
			d[k] = v
		}
	}
	return d
}

//settle replaces the board without touching the counters
func (u *BaseUniverse) settle(cells []Cell) {
	u.board.Lock()
	u.board.cells = cells
	u.board.Unlock()
	u.state.Lock()
	u.state.LiveCells = LiveCells(cells)
	u.state.Unlock()
}

//startTicking replaces the current ticker with a new one
func (u *BaseUniverse) startTicking() {
	u.stopTicking()
	t := &ticker{stop: make(chan struct{})}
	u.ticker = t
	go u.tickLoop(t, u.options.Interval)
}

//stopTicking cancels the current ticker, safe to call when not running
func (u *BaseUniverse) stopTicking() {
	if u.ticker == nil {
		return
	}
	u.ticker.cancel()
	u.ticker = nil
}

//tickLoop queues one step per interval until t is cancelled
//a queued step is dropped if t is no longer the current ticker when it executes
func (u *BaseUniverse) tickLoop(t *ticker, interval time.Duration) {
	tc := time.NewTicker(interval)
	defer tc.Stop()
	tick := u.tickFor(t)
	for {
		select {
		case <-t.stop:
			return
		case <-u.done:
			return
		case <-tc.C:
			select {
			case u.controlCh <- tick:
			case <-t.stop:
				return
			case <-u.done:
				return
			}
		}
	}
}

//tickFor returns the step command of ticker t, it does nothing once t is not current
func (u *BaseUniverse) tickFor(t *ticker) func() {
	return func() {
		if u.ticker != t {
			return
		}
		u.step()
	}
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	from := u.state.RunningMode
	u.state.RunningMode = to
	gen := u.state.Generation
	u.state.Unlock()
	log.WithFields(log.Fields{
		"from":       from,
		"to":         to,
		"generation": gen,
	}).Debug("running state switched")
	u.publish()
}

//publish sends the status to stateCh and refreshes the views
func (u *BaseUniverse) publish() {
	st := u.Status()
	if u.stateCh != nil {
		select {
		case u.stateCh <- st:
		case <-u.done:
			return
		}
	}
	u.refreshView()
}

//_nextIteration does one simulation cycle
//the simplest implementation: creates the new board on each call and replaces the old one
func (u *BaseUniverse) _nextIteration() (liveCells int, changed bool) {
	next := NextGeneration(u.board.cells, u.options.Width, u.options.Topology)
	for i, c := range next {
		if c.Living {
			liveCells++
		}
		changed = changed || c.Living != u.board.cells[i].Living
	}
	u.board.cells = next
	return
}

//refreshView calls Refresh event for all registered views
func (u *BaseUniverse) refreshView() {
	u.views.Lock()
	views := append([]Viewer(nil), u.views.list...)
	u.views.Unlock()
	for _, v := range views {
		v.Refresh()
	}
}
