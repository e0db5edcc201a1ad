package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeboard/src/config"
	"lifeboard/src/universe"
	"lifeboard/src/view"
)

func TestEnginesMatchConfig(t *testing.T) {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	assert.Equal(t, config.Engines, names)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"interval": "2s", "topology": "bounded", "generations": 5}`), 0o600))

	cfg, err := loadConfig(&EnvOptions{configFile: name, engine: "swap", generations: -1})
	require.NoError(t, err)
	assert.Equal(t, config.Duration(2*time.Second), cfg.Interval)
	assert.Equal(t, "bounded", cfg.Topology)
	assert.Equal(t, "swap", cfg.Engine)
	assert.Equal(t, 5, cfg.Generations)

	cfg, err = loadConfig(&EnvOptions{configFile: name, interval: time.Millisecond, topology: "torus", generations: 0})
	require.NoError(t, err)
	assert.Equal(t, config.Duration(time.Millisecond), cfg.Interval)
	assert.Equal(t, "torus", cfg.Topology)
	assert.Zero(t, cfg.Generations)

	_, err = loadConfig(&EnvOptions{configFile: name, engine: "multithreaded", generations: -1})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = loadConfig(&EnvOptions{configFile: filepath.Join(t.TempDir(), "absent.json"), generations: -1})
	assert.Error(t, err, "a named configuration file must exist")
}

func TestRunConsole(t *testing.T) {
	for _, e := range []string{"base", "swap"} {
		t.Run(e, func(t *testing.T) {
			o := universe.DefaultOptions()
			o.Interval = time.Millisecond
			o.Seed = 11
			u := engines[e](&o, make(chan universe.Status, 10))

			require.NoError(t, runConsole(u, view.NewConsoleOut(io.Discard, false), 3))
			assert.GreaterOrEqual(t, u.Status().Generation, 3)
		})
	}
}

func TestRun(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})
	dir := t.TempDir()
	logFile := filepath.Join(dir, "lifeboard.log")
	name := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"log_level": "info"}`), 0o600))

	var out bytes.Buffer
	err := run(&EnvOptions{
		configFile:  name,
		interval:    time.Millisecond,
		engine:      "swap",
		seed:        5,
		generations: 2,
		logFile:     logFile,
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "engine: swap")

	//the log file is closed and the standard logger no longer writes to it
	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "finished")
	log.Info("after run")
	again, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, logged, again)

	err = run(&EnvOptions{configFile: name, engine: "multithreaded", generations: -1, logFile: logFile}, &out)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
