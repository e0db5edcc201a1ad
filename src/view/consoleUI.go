package view

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"lifeboard/src/universe"
)

const boardView = "board"

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

type ConsoleUI struct {
	u universe.Universe
	g *gocui.Gui
	k []keyBindings

	liveFiller string
	deadFiller string
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateIdle:    aurora.Colorize("idle", aurora.BlueFg).String(),
		universe.RunningStateRunning: aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStatePaused:  aurora.Colorize("paused", aurora.YellowFg).String(),
	}
)

func NewConsoleUI() (*ConsoleUI, error) {
	var err error
	t := ConsoleUI{
		liveFiller: aurora.Green("█").BgBrightGreen().String(),
		deadFiller: "░",
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "terminal ui")
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'q', "Q", "Exit", t.cmdQuit, ""},
		{'s', "S", "Start", t.cmdStart, ""},
		{'p', "P", "Pause/Resume", t.cmdPause, ""},
		{'r', "R", "Reset", t.cmdReset, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, boardView},
	}
	t.g.SetManagerFunc(t.layout)

	if err = t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return errors.Wrapf(err, "key binding %s", kb.name)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

//Start blocks until the user quits
func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.WithError(err).Error("terminal ui stopped")
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderBoard()
	t.renderStatus()
}

func (t *ConsoleUI) renderBoard() {
	cells := t.u.Cells()
	width := t.u.Options().Width

	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View(boardView)
		if e != nil {
			return nil
		}
		v.Clear()

		var b bytes.Buffer
		for i, c := range cells {
			if i != 0 && i%width == 0 {
				b.WriteByte('\n')
			}
			if c.Living {
				b.WriteString(t.liveFiller)
			} else {
				b.WriteString(t.deadFiller)
			}
		}
		_, _ = fmt.Fprint(v, b.String())
		return nil
	})
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Generation", "%v", s.Generation))
			_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.u.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Topology", "%v", c.Topology))
			_, _ = fmt.Fprintln(v, t.renderProp("Engine", "%v", c.Advanced["engine"]))
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	o := t.u.Options()
	leftColumnWidth := 28
	minWindowHeight := o.Height + 10

	if maxY < minWindowHeight || maxX < leftColumnWidth+o.Width+3 {
		if _, err := t.headerLayout(g, maxY, "Terminal too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView(boardView)
		return nil
	}
	if _, err := t.headerLayout(g, 3, "Conway's Life"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	//the board view is sized to the board so a click position is a cell position
	if v, err := g.SetView(boardView, leftColumnWidth+1, 3, leftColumnWidth+o.Width+2, 3+o.Height+1); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Board"
		v.Frame = true
		t.renderBoard()
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdStart(_ *gocui.View) error {
	t.u.Start()
	return nil
}

func (t *ConsoleUI) cmdPause(_ *gocui.View) error {
	t.u.TogglePause()
	return nil
}

func (t *ConsoleUI) cmdReset(_ *gocui.View) error {
	t.u.Reset()
	return nil
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	t.u.ToggleAt(cx, cy)
	return nil
}
