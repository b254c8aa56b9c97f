package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	params, err := cfg.Texture.Parameters()
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureFilterLinearMipmapLinear, params.MinFilter)
	assert.Equal(t, metadata.TextureFilterLinear, params.MagFilter)
	assert.True(t, params.GenerateMipmap)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[app]
name = "PBR testbed"
width = 1920
samples = 8

[log]
level = "debug"

[texture]
wrap = "clamp_to_edge"
flip_y = false

[render]
clear_color = [0.2, 0.3, 0.4, 1.0]
`))
	require.NoError(t, err)

	assert.Equal(t, "PBR testbed", cfg.App.Name)
	assert.Equal(t, uint32(1920), cfg.App.Width)
	assert.Equal(t, uint32(720), cfg.App.Height)
	assert.Equal(t, int32(8), cfg.App.Samples)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 1}, cfg.Render.ClearColor)
	assert.False(t, cfg.Texture.FlipY)
	assert.Equal(t, 2, cfg.Jobs.Workers)

	params, err := cfg.Texture.Parameters()
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureWrapClampToEdge, params.Wrap)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("[jobs]\nworkers = 0\n"))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = Parse([]byte("[texture]\nmag_filter = \"linear_mipmap_linear\"\n"))
	assert.ErrorIs(t, err, core.ErrUnsupportedValue)

	_, err = Parse([]byte("[texture]\nwrap = \"sideways\"\n"))
	assert.ErrorIs(t, err, core.ErrUnsupportedValue)

	_, err = Parse([]byte("[app\nwidth = 3"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.App.Width = 0
	cfg.Render.UploadQueue = 0
	cfg.Assets.Root = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "upload_queue")
	assert.Contains(t, err.Error(), "empty root")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("[assets]\nroot = \"content\"\nwatch = false\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Assets.Root)
	assert.False(t, cfg.Assets.Watch)

	require.NoError(t, os.WriteFile(path, []byte("[render]\nupload_queue = -1\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
