package universe

type Universe interface {
	Status() Status
	Options() Options
	Cells() []Cell
	StateCh() chan Status
	Snapshot() (Status, []Cell)
	Start()
	Pause()
	Resume()
	TogglePause()
	Reset()
	Step()
	Toggle(id int)
	ToggleAt(x int, y int)
	RegisterViewer(v Viewer)
	Close()
}
