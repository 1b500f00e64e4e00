package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromYAML(nil)
	require.NoError(t, err)

	o := cfg.ControlPointOptions()
	assert.False(t, o.ValidateArguments)
	assert.True(t, o.AdvancedTypecasting)
	assert.Equal(t, 30*time.Second, o.CallOptions.Timeout)
	assert.Nil(t, o.CallOptions.Headers)

	m := cfg.ManagerOptions()
	assert.Equal(t, 300*time.Second, m.RequestedTimeout)
	assert.Equal(t, 10*time.Second, m.ResubscriptionBuffer)
	assert.Equal(t, time.Second, m.PollInterval)
	assert.Empty(t, m.ExistingSID)

	l := cfg.ListenerOptions()
	assert.Empty(t, l.Address)
	assert.Zero(t, l.Port)
}

func TestFromYAMLOverridesDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte(`
ControlPoint:
  Validate_Arguments: true
  call_headers:
    User-Agent: pmocontrol/1.0
subscription:
  requested_timeout: 1800
  existing_sid: uuid:abcd
listener:
  address: 192.168.1.20
  port: 49152
`))
	require.NoError(t, err)

	o := cfg.ControlPointOptions()
	assert.True(t, o.ValidateArguments)
	assert.True(t, o.AdvancedTypecasting)
	assert.Equal(t, map[string]string{"user-agent": "pmocontrol/1.0"}, o.CallOptions.Headers)

	ec := cfg.EventConfig()
	assert.Equal(t, 1800*time.Second, ec.Manager.RequestedTimeout)
	assert.Equal(t, 10*time.Second, ec.Manager.ResubscriptionBuffer)
	assert.Equal(t, "uuid:abcd", ec.Manager.ExistingSID)
	assert.Equal(t, "192.168.1.20", ec.Listener.Address)
	assert.Equal(t, 49152, ec.Listener.Port)

	_, err = FromYAML([]byte("controlpoint: [unclosed"))
	assert.Error(t, err)
}

func TestGetSetValue(t *testing.T) {
	cfg, err := FromYAML(nil)
	require.NoError(t, err)

	v, err := cfg.GetValue([]string{"LOG", "Level"})
	require.NoError(t, err)
	assert.Equal(t, "warning", v)

	_, err = cfg.GetValue([]string{"log", "missing"})
	assert.Error(t, err)
	_, err = cfg.GetValue([]string{"log", "level", "deeper"})
	assert.Error(t, err)

	cfg.SetValue([]string{"Devices", "Renderer", "SID"}, "uuid:1")
	assert.Equal(t, "uuid:1", cfg.GetString("", "devices", "renderer", "sid"))

	cfg.SetValue([]string{"log", "level", "nested"}, 1)
	assert.Equal(t, 1, cfg.GetInt(0, "log", "level", "nested"))
}

func TestTypedGetters(t *testing.T) {
	cfg, err := FromYAML([]byte(`
values:
  seconds: 15
  fraction: 0.5
  text: 2m
  bad: soon
  port: "8080"
`))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.GetDuration(0, "values", "seconds"))
	assert.Equal(t, 500*time.Millisecond, cfg.GetDuration(0, "values", "fraction"))
	assert.Equal(t, 2*time.Minute, cfg.GetDuration(0, "values", "text"))
	assert.Equal(t, time.Hour, cfg.GetDuration(time.Hour, "values", "bad"))
	assert.Equal(t, 8080, cfg.GetInt(0, "values", "port"))
	assert.Equal(t, 7, cfg.GetInt(7, "values", "bad"))
	assert.True(t, cfg.GetBool(true, "values", "missing"))
	assert.Equal(t, "15", cfg.GetString("", "values", "seconds"))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pmocontrol.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "debug", cfg.GetString("", "log", "level"))
	assert.Equal(t, "text", cfg.GetString("", "log", "format"))
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yml")
	require.NoError(t, os.WriteFile(path, []byte("listener:\n  port: 5000\n"), 0644))

	t.Setenv(envConfigFile, path)
	t.Setenv(envPrefix+"CONTROLPOINT__VALIDATE_ARGUMENTS", "true")
	t.Setenv(envPrefix+"SUBSCRIPTION__POLL_INTERVAL", "250ms")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yml"), nil)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.ListenerOptions().Port)
	assert.True(t, cfg.ControlPointOptions().ValidateArguments)
	assert.Equal(t, 250*time.Millisecond, cfg.ManagerOptions().PollInterval)
}

func TestSave(t *testing.T) {
	cfg, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Error(t, cfg.Save())

	path := filepath.Join(t.TempDir(), "saved.yml")
	cfg.SetPath(path)
	cfg.SetValue([]string{"subscription", "existing_sid"}, "uuid:42")
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	back, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "uuid:42", back.ManagerOptions().ExistingSID)
}

func TestIsWriteable(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, isWriteable(filepath.Join(dir, "new.yml")))
	assert.False(t, isWriteable(filepath.Join(dir, "missing", "new.yml")))
	assert.False(t, isWriteable(dir))
}

func TestLogger(t *testing.T) {
	cfg, err := FromYAML([]byte("log:\n  level: info\n  format: json\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	cfg.SetValue([]string{"log", "level"}, "loud")
	_, err = cfg.Logger(&buf)
	assert.Error(t, err)
}
