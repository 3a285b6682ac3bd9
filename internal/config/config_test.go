package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morselive/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Device.Host)
	assert.Nil(t, cfg.Session.Speed)
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[device]
host = "trainer.local"
port = 8080

[session]
profile = 3
speed = 25

[client]
heatmap = false
input = "free"
show-answers = false

[tone]
frequency = 650.0
command = ["aplay", "-q"]

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Device.Host)
	assert.Equal(t, "trainer.local", *cfg.Device.Host)
	assert.Equal(t, 8080, *cfg.Device.Port)
	assert.Equal(t, 3, *cfg.Session.Profile)
	assert.Equal(t, 25, *cfg.Session.Speed)
	assert.False(t, *cfg.Client.Heatmap)
	assert.Nil(t, cfg.Client.Keyboard)
	assert.Equal(t, "free", *cfg.Client.Input)
	assert.False(t, *cfg.Client.ShowAnswers)
	assert.Equal(t, 650.0, *cfg.Tone.Frequency)
	assert.Equal(t, []string{"aplay", "-q"}, cfg.Tone.Command)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\nwpm = 20\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.wpm")
}

func TestEnsureFileWritesTemplateOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morselive", "config.toml")
	created, err := EnsureFile(path)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "template must parse")
	assert.Nil(t, cfg.Device.Host)

	require.NoError(t, os.WriteFile(path, []byte("[device]\n"), 0o644))
	created, err = EnsureFile(path)
	require.NoError(t, err)
	assert.False(t, created)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[device]\n", string(data))
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "morselive", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/state", "morselive", "morselive.log"), DefaultLogPath())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MORSELIVE_HOST=10.0.0.7\nMORSELIVE_PORT=81\n"), 0o644))
	cfg, err := LoadEnvFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Host)
	assert.Equal(t, "10.0.0.7", *cfg.Host)
	assert.Equal(t, 81, *cfg.Port)

	require.NoError(t, os.WriteFile(path, []byte("MORSELIVE_PORT=eighty\n"), 0o644))
	_, err = LoadEnvFile(path)
	require.ErrorContains(t, err, EnvPort)
}

func TestLoadEnvReadsProcessEnvironment(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv(EnvHost, "trainer")
	t.Setenv(EnvPort, "")
	cfg, err := LoadEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.Host)
	assert.Equal(t, "trainer", *cfg.Host)
	assert.Nil(t, cfg.Port)
}

func TestTemplateSuggestsDefaults(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(Template, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	defaults := model.DefaultConfig()
	require.NotNil(t, cfg.Session.Profile)
	require.NotNil(t, cfg.Session.Speed)
	assert.Equal(t, defaults.Profile, *cfg.Session.Profile)
	assert.Equal(t, defaults.Speed, *cfg.Session.Speed)
	assert.Equal(t, defaults.ToneFrequency, *cfg.Tone.Frequency)
	assert.Equal(t, defaults.ToneVolume, *cfg.Tone.Volume)
	assert.Equal(t, defaults.LogLevel, *cfg.Log.Level)
	assert.Equal(t, defaults.InputMode.String(), *cfg.Client.Input)
}
