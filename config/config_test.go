package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
modules = "vm,host"

[vm]
channel-capacity = 8

[store]
path = "/tmp/programs"

[tracing]
otlp-endpoint = "localhost:4318"
insecure = true
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "vm,host", c.Log.Modules)
	assert.Equal(t, 8, c.VM.ChannelCapacity)
	assert.Equal(t, "/tmp/programs", c.Store.Path)
	assert.Equal(t, "localhost:4318", c.Tracing.OTLPEndpoint)
	assert.True(t, c.Tracing.Insecure)
	assert.Equal(t, path, c.Path)

	// untouched sections keep their defaults
	assert.Equal(t, DefaultListen, c.Bridge.Listen)
	assert.False(t, c.VM.Trace)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[log\nlevel="))
	assert.ErrorContains(t, err, "parse error")

	_, err = Load(writeConfig(t, "[vm]\nchanel-capacity = 3\n"))
	assert.ErrorContains(t, err, "unknown key")

	_, err = Load(writeConfig(t, "[vm]\nchannel-capacity = -1\n"))
	assert.ErrorContains(t, err, "channel-capacity")

	_, err = Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "log.level")
}

func TestDefaultRoundTrip(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	path := writeConfig(t, buf.String())

	loaded, err := Load(path)
	require.NoError(t, err)
	loaded.Path = ""
	assert.Equal(t, c, loaded)
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, c.Log.Level)
}
