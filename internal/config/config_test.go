package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"cooldownSeconds": 30,
		"worldScale": { "vehicleInterior": 0.5 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vrlink.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 30, viper.GetInt("cooldownSeconds"))
	assert.Equal(t, 0.5, viper.GetFloat64("worldScale.vehicleInterior"))
	// untouched keys keep their defaults
	assert.Equal(t, 1.0, viper.GetFloat64("worldScale.editor"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vrlink.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, false, viper.GetBool("autoStart"))
	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./vrlogs", viper.GetString("logsDir"))
	assert.Equal(t, 10, viper.GetInt("cooldownSeconds"))
	assert.Equal(t, 1.0, viper.GetFloat64("worldScale.menu"))
	assert.Equal(t, 1.0, viper.GetFloat64("worldScale.vehicleInterior"))
	assert.Equal(t, 1.0, viper.GetFloat64("worldScale.extravehicular"))
	assert.Equal(t, 1.0, viper.GetFloat64("worldScale.editor"))
	assert.Equal(t, false, viper.GetBool("recorder.enabled"))
	assert.Equal(t, "memory", viper.GetString("recorder.type"))
	assert.Equal(t, "./vrsessions.db", viper.GetString("recorder.path"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "localhost", viper.GetString("influx.host"))
	assert.Equal(t, "8086", viper.GetString("influx.port"))
	assert.Equal(t, "http", viper.GetString("influx.protocol"))
	assert.Equal(t, "vrlink-metrics", viper.GetString("influx.org"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "", viper.GetString("otel.endpoint"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetFloat64(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testFloat", 2.5)
	assert.Equal(t, 2.5, GetFloat64("testFloat"))
}

func TestRecorder_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vrlink.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	rc := Recorder()
	assert.Equal(t, false, rc.Enabled)
	assert.Equal(t, "memory", rc.Type)
	assert.Equal(t, "./vrsessions.db", rc.Path)
}

func TestRecorder_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"recorder": { "enabled": true, "type": "sqlite", "path": "/tmp/sessions.db" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vrlink.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	rc := Recorder()
	assert.Equal(t, true, rc.Enabled)
	assert.Equal(t, "sqlite", rc.Type)
	assert.Equal(t, "/tmp/sessions.db", rc.Path)
}
