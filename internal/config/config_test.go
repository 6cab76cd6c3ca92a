package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[mainConfig]
appName = "shop_chat_test"
port = 9100

[chatConfig]
previewLength = 40

[kafkaConfig]
messageMode = "kafka"
hostPort = "kafka:9092"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop_chat_test", cfg.AppName)
	assert.Equal(t, 9100, cfg.MainConfig.Port)
	assert.Equal(t, 40, cfg.PreviewLength)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.Equal(t, "kafka", cfg.MessageMode)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadReportsSyntaxErrorOfExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[mainConfig\nport = 9100\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var parseErr toml.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), path)
}

func TestLoadSearchPaths(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("port = = 1\n"), 0o644))
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("[mainConfig]\nport = 9300\n"), 0o644))

	saved := searchPaths
	t.Cleanup(func() { searchPaths = saved })

	searchPaths = []string{filepath.Join(dir, "absent.toml"), good}
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.MainConfig.Port)

	searchPaths = []string{filepath.Join(dir, "absent.toml")}
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MainConfig.Port, cfg.MainConfig.Port)

	searchPaths = []string{broken, good}
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken)
}

func TestEnvOverridesSecret(t *testing.T) {
	t.Setenv("SHOPCHAT_JWT_SECRET", "from-env")
	t.Setenv("SHOPCHAT_PORT", "9200")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[jwtConfig]\nsecret = \"from-file\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Secret)
	assert.Equal(t, 9200, cfg.MainConfig.Port)
}
