package gettingback

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("gettingback: invalid config")

// Config holds the window and renderer settings read from a TOML file.
type Config struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	Debug  bool   `toml:"debug"`
	VSync  bool   `toml:"vsync"`

	// ClearColor is linear RGBA.
	ClearColor [4]float64 `toml:"clear_color"`

	// Scene is an optional YAML scene file; the built-in test scene is used when empty.
	Scene string `toml:"scene"`
	// Shader overrides the embedded lit shader and is reloaded when it changes.
	Shader string `toml:"shader"`
	// Target is the layout target used when dumping frame payloads.
	Target string `toml:"target"`
}

func DefaultConfig() Config {
	return Config{
		Title:      "GettingBack",
		Width:      1280,
		Height:     720,
		VSync:      true,
		ClearColor: [4]float64{0, 0, 0.1, 1},
		Target:     "wgsl",
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Width == 0 || c.Height == 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height))
	}
	if _, err := layout.ParseTarget(c.Target); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}

// LayoutTarget returns the parsed Target, defaulting to WGSL.
func (c Config) LayoutTarget() layout.Target {
	t, err := layout.ParseTarget(c.Target)
	if err != nil {
		return layout.WGSL
	}
	return t
}
