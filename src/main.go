package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lifeboard/src/config"
	"lifeboard/src/universe"
	"lifeboard/src/view"
)

var (
	engines = map[string]func(o *universe.Options, stateCh chan universe.Status) universe.Universe{
		"base": func(o *universe.Options, stateCh chan universe.Status) universe.Universe {
			return universe.NewBaseUniverse(o, stateCh)
		},
		"swap": universe.NewSwapUniverse,
	}

	errGenerationsReached = errors.New("generations reached")
)

//EnvOptions holds the command line values, zero values mean "not given"
type EnvOptions struct {
	configFile  string
	interval    time.Duration
	topology    string
	engine      string
	seed        int64
	interactive bool
	generations int
	logLevel    string
	logFile     string
}

func main() {
	if err := run(initOptions(), os.Stdout); err != nil {
		log.WithError(err).Fatal("lifeboard")
	}
}

//run owns every resource it opens, so they are released before main exits
func run(eo *EnvOptions, out io.Writer) error {
	cfg, err := loadConfig(eo)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	closeLog, err := initLogging(cfg)
	if err != nil {
		return errors.Wrap(err, "logging")
	}
	defer closeLog()

	o, err := cfg.Options()
	if err != nil {
		return errors.Wrap(err, "configuration")
	}

	if cfg.Interactive {
		u := engines[cfg.Engine](&o, nil)
		defer u.Close()
		v, err := view.NewConsoleUI()
		if err != nil {
			return errors.Wrap(err, "interactive mode")
		}
		u.RegisterViewer(v)
		v.Start()
		return nil
	}

	u := engines[cfg.Engine](&o, make(chan universe.Status, 10))
	return errors.Wrap(runConsole(u, view.NewConsoleOut(out, true), cfg.Generations), "simulation")
}

func initOptions() (eo *EnvOptions) {
	eo = &EnvOptions{configFile: config.DefaultFile, generations: -1}
	flaggy.SetName("lifeboard")
	flaggy.SetDescription("Conway's Life on a 20x20 board")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configFile, "c", "config", "Configuration file (JSON)")
	flaggy.Duration(&eo.interval, "i", "interval", "Interval between the generations, for example 1s or 150ms")
	flaggy.String(&eo.topology, "t", "topology", "Edge handling [torus|bounded]")
	flaggy.String(&eo.engine, "e", "engine", "Engine to use ["+strings.Join(config.Engines, "|")+"]")
	flaggy.Int64(&eo.seed, "", "seed", "Seed of the random board, 0 seeds from the clock")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Int(&eo.generations, "g", "generations", "Stop after this many generations in non-interactive mode, 0 runs until interrupted")
	flaggy.String(&eo.logLevel, "l", "log-level", "Log level [debug|info|warn|error]")
	flaggy.String(&eo.logFile, "", "log-file", "Write the log to this file")

	flaggy.Parse()
	return
}

//loadConfig reads the configuration file and applies the command line values over it
//the default file may be absent, an explicitly named one may not
func loadConfig(eo *EnvOptions) (config.Config, error) {
	cfg, err := config.Load(eo.configFile, eo.configFile == config.DefaultFile)
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, eo)
	return cfg, cfg.Validate()
}

func applyFlags(cfg *config.Config, eo *EnvOptions) {
	if eo.interval != 0 {
		cfg.Interval = config.Duration(eo.interval)
	}
	if eo.topology != "" {
		cfg.Topology = eo.topology
	}
	if eo.engine != "" {
		cfg.Engine = eo.engine
	}
	if eo.seed != 0 {
		cfg.Seed = eo.seed
	}
	if eo.interactive {
		cfg.Interactive = true
	}
	if eo.generations >= 0 {
		cfg.Generations = eo.generations
	}
	if eo.logLevel != "" {
		cfg.LogLevel = eo.logLevel
	}
	if eo.logFile != "" {
		cfg.LogFile = eo.logFile
	}
}

//initLogging sets level and output, the terminal ui owns the screen so it logs to a file or nowhere
func initLogging(cfg config.Config) (func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", cfg.LogFile)
		}
		log.SetOutput(f)
		return func() {
			log.SetOutput(os.Stderr)
			_ = f.Close()
		}, nil
	case cfg.Interactive:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return func() {}, nil
}

//runConsole starts the simulation and prints it until the generations are reached or the process is interrupted
func runConsole(u universe.Universe, v universe.Viewer, generations int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer u.Close()

	u.RegisterViewer(v)
	v.Start()
	log.WithFields(log.Fields{
		"engine":      u.Options().Advanced["engine"],
		"generations": generations,
	}).Info("\"The Life\" game simulation started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case st := <-u.StateCh():
				if generations > 0 && st.Generation >= generations {
					log.WithField("generation", st.Generation).Info("finished")
					return errGenerationsReached
				}
			}
		}
	})
	//closing stops the ticker and unblocks a main loop waiting on the status channel
	g.Go(func() error {
		<-ctx.Done()
		u.Close()
		return nil
	})

	u.Start()
	if err := g.Wait(); err != nil && !errors.Is(err, errGenerationsReached) {
		return err
	}
	st := u.Status()
	log.WithFields(log.Fields{
		"generation": st.Generation,
		"liveCells":  st.LiveCells,
	}).Info("stopped")
	return nil
}
