package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeboard/src/universe"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "lifeboard.json")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	o, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, 20, o.Width)
	assert.Equal(t, 20, o.Height)
	assert.Equal(t, time.Second, o.Interval)
	assert.Equal(t, universe.Torus, o.Topology)
}

func TestLoad(t *testing.T) {
	name := writeFile(t, `{"interval": "250ms", "topology": "bounded", "engine": "swap", "seed": 9}`)

	c, err := Load(name, false)
	require.NoError(t, err)
	assert.Equal(t, Duration(250*time.Millisecond), c.Interval)
	assert.Equal(t, "swap", c.Engine)
	assert.Equal(t, "info", c.LogLevel, "unset fields keep their defaults")

	o, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, universe.Bounded, o.Topology)
	assert.Equal(t, int64(9), o.Seed)
}

func TestLoad_Missing(t *testing.T) {
	name := filepath.Join(t.TempDir(), "absent.json")

	c, err := Load(name, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(name, false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Malformed(t *testing.T) {
	for _, content := range []string{`{`, `{"interval": 5}`, `{"interval": "soon"}`} {
		_, err := Load(writeFile(t, content), false)
		assert.Error(t, err, content)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"unknown topology", func(c *Config) { c.Topology = "flat" }},
		{"unknown engine", func(c *Config) { c.Engine = "multithreaded" }},
		{"negative generations", func(c *Config) { c.Generations = -1 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
			_, err := c.Options()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
