// Package config loads the engine settings from a TOML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

const DefaultPath = "engine.toml"

type Config struct {
	App     AppConfig     `toml:"app"`
	Log     LogConfig     `toml:"log"`
	Assets  AssetsConfig  `toml:"assets"`
	Jobs    JobsConfig    `toml:"jobs"`
	Render  RenderConfig  `toml:"render"`
	Texture TextureConfig `toml:"texture"`
}

type AppConfig struct {
	Name   string `toml:"name"`
	X      int32  `toml:"x"`
	Y      int32  `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// Samples is the MSAA sample count of scene frames.
	Samples int32 `toml:"samples"`
	VSync   bool  `toml:"vsync"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	Root  string `toml:"root"`
	Watch bool   `toml:"watch"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type RenderConfig struct {
	// UploadQueue is the capacity of the worker to GPU thread hand-off.
	UploadQueue   int        `toml:"upload_queue"`
	MaxGeometries uint32     `toml:"max_geometries"`
	ClearColor    [4]float32 `toml:"clear_color"`
}

type TextureConfig struct {
	MaxTextures uint32 `toml:"max_textures"`
	Anisotropy  int32  `toml:"anisotropy"`
	MinFilter   string `toml:"min_filter"`
	MagFilter   string `toml:"mag_filter"`
	Wrap        string `toml:"wrap"`
	Mipmaps     bool   `toml:"mipmaps"`
	FlipY       bool   `toml:"flip_y"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Triangle",
			X:       100,
			Y:       100,
			Width:   1280,
			Height:  720,
			Samples: 4,
			VSync:   true,
		},
		Log: LogConfig{Level: "info"},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Render: RenderConfig{
			UploadQueue:   64,
			MaxGeometries: 256,
			ClearColor:    [4]float32{0.1, 0.1, 0.1, 1},
		},
		Texture: TextureConfig{
			MaxTextures: 1024,
			Anisotropy:  16,
			MinFilter:   "linear_mipmap_linear",
			MagFilter:   "linear",
			Wrap:        "repeat",
			Mipmaps:     true,
			FlipY:       true,
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("config %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrInvalidArgument))
	}

	if c.App.Width == 0 || c.App.Height == 0 {
		invalid("app: window size %dx%d", c.App.Width, c.App.Height)
	}
	if c.App.Samples < 1 {
		invalid("app: samples %d", c.App.Samples)
	}
	if c.Assets.Root == "" {
		invalid("assets: empty root")
	}
	if c.Jobs.Workers <= 0 {
		invalid("jobs: workers %d", c.Jobs.Workers)
	}
	if c.Jobs.QueueSize < 0 {
		invalid("jobs: queue_size %d", c.Jobs.QueueSize)
	}
	if c.Render.UploadQueue <= 0 {
		invalid("render: upload_queue %d", c.Render.UploadQueue)
	}
	if c.Render.MaxGeometries == 0 {
		invalid("render: max_geometries must be > 0")
	}
	if c.Texture.MaxTextures == 0 {
		invalid("texture: max_textures must be > 0")
	}
	if _, err := c.Texture.Parameters(); err != nil {
		errs = append(errs, fmt.Errorf("texture: %w", err))
	}
	return errors.Join(errs...)
}

var filters = map[string]metadata.TextureFilter{
	"nearest":                metadata.TextureFilterNearest,
	"linear":                 metadata.TextureFilterLinear,
	"nearest_mipmap_nearest": metadata.TextureFilterNearestMipmapNearest,
	"linear_mipmap_nearest":  metadata.TextureFilterLinearMipmapNearest,
	"nearest_mipmap_linear":  metadata.TextureFilterNearestMipmapLinear,
	"linear_mipmap_linear":   metadata.TextureFilterLinearMipmapLinear,
}

var wraps = map[string]metadata.TextureWrap{
	"repeat":          metadata.TextureWrapRepeat,
	"mirrored_repeat": metadata.TextureWrapMirroredRepeat,
	"clamp_to_edge":   metadata.TextureWrapClampToEdge,
	"clamp_to_border": metadata.TextureWrapClampToBorder,
}

// Parameters translates the texture section into sampling parameters.
func (t TextureConfig) Parameters() (metadata.TextureParameters, error) {
	minFilter, ok := filters[strings.ToLower(t.MinFilter)]
	if !ok {
		return metadata.TextureParameters{}, fmt.Errorf("min_filter %q: %w", t.MinFilter, core.ErrUnsupportedValue)
	}
	magFilter, ok := filters[strings.ToLower(t.MagFilter)]
	if !ok || magFilter > metadata.TextureFilterLinear {
		return metadata.TextureParameters{}, fmt.Errorf("mag_filter %q: %w", t.MagFilter, core.ErrUnsupportedValue)
	}
	wrap, ok := wraps[strings.ToLower(t.Wrap)]
	if !ok {
		return metadata.TextureParameters{}, fmt.Errorf("wrap %q: %w", t.Wrap, core.ErrUnsupportedValue)
	}
	return metadata.TextureParameters{
		Anisotropy:     t.Anisotropy,
		MinFilter:      minFilter,
		MagFilter:      magFilter,
		Wrap:           wrap,
		GenerateMipmap: t.Mipmaps,
	}, nil
}
