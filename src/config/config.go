package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"lifeboard/src/universe"
)

const DefaultFile = "lifeboard.json"

var ErrInvalid = errors.New("invalid configuration")

//Engines lists the engine names accepted by Validate
var Engines = []string{"base", "swap"}

//Duration is a time.Duration written as "1s" or "250ms" in JSON
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrapf(err, "duration %s", b)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "duration %q", s)
	}
	*d = Duration(v)
	return nil
}

//Config holds the configuration for the game
type Config struct {
	Interval    Duration `json:"interval"`
	Topology    string   `json:"topology"`
	Engine      string   `json:"engine"`
	Seed        int64    `json:"seed"`
	Interactive bool     `json:"interactive"`
	Generations int      `json:"generations"`
	LogLevel    string   `json:"log_level"`
	LogFile     string   `json:"log_file"`
}

//Default returns the shipped configuration: a torus ticking once a second
func Default() Config {
	return Config{
		Interval: Duration(universe.DefInterval),
		Topology: universe.Torus.String(),
		Engine:   "base",
		LogLevel: log.InfoLevel.String(),
	}
}

//Load reads filename over Default
//a missing file is not an error when missingOK is set
func Load(filename string, missingOK bool) (Config, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if missingOK && os.IsNotExist(err) {
			return config, nil
		}
		return config, errors.Wrapf(err, "[Load] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[Load] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

//Validate reports the first invalid field
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.Wrapf(ErrInvalid, "interval %v must be positive", time.Duration(c.Interval))
	}
	if _, err := universe.ParseTopology(c.Topology); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if !c.knownEngine() {
		return errors.Wrapf(ErrInvalid, "engine %q, want one of %s", c.Engine, strings.Join(Engines, "|"))
	}
	if c.Generations < 0 {
		return errors.Wrapf(ErrInvalid, "generations %d must not be negative", c.Generations)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}

func (c Config) knownEngine() bool {
	for _, e := range Engines {
		if e == c.Engine {
			return true
		}
	}
	return false
}

//Options converts the configuration into universe options
func (c Config) Options() (universe.Options, error) {
	if err := c.Validate(); err != nil {
		return universe.Options{}, err
	}
	topology, _ := universe.ParseTopology(c.Topology)
	o := universe.DefaultOptions()
	o.Interval = time.Duration(c.Interval)
	o.Topology = topology
	o.Seed = c.Seed
	return o, nil
}
