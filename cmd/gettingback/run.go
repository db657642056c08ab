package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gekko3d/gettingback"
	"github.com/gekko3d/gettingback/gpu"
	"github.com/gekko3d/gettingback/shaders"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	var configPath string
	var dump bool
	cfg := gettingback.DefaultConfig()

	cmd := &cobra.Command{
		Use:          "gettingback",
		Short:        "Render a scene with the lit pipeline",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				return nil
			}
			loaded, err := gettingback.LoadConfig(configPath)
			if err != nil {
				return err
			}
			// flags given on the command line win over the file
			overrides := map[string]func(c *gettingback.Config){
				"scene":  func(c *gettingback.Config) { c.Scene = cfg.Scene },
				"shader": func(c *gettingback.Config) { c.Shader = cfg.Shader },
				"target": func(c *gettingback.Config) { c.Target = cfg.Target },
				"debug":  func(c *gettingback.Config) { c.Debug = cfg.Debug },
			}
			cmd.Flags().Visit(func(f *pflag.Flag) {
				if o, ok := overrides[f.Name]; ok {
					o(&loaded)
				}
			})
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := gettingback.NewLogger("gettingback", cmd.ErrOrStderr(), cfg.Debug)
			if dump {
				return dumpFrame(cmd.OutOrStdout(), cfg, log)
			}
			return run(cmd.Context(), cfg, log)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file")
	f.StringVar(&cfg.Scene, "scene", cfg.Scene, "YAML scene file")
	f.StringVar(&cfg.Shader, "shader", cfg.Shader, "WGSL file replacing the embedded lit shader, reloaded on change")
	f.StringVar(&cfg.Target, "target", cfg.Target, "layout target for --dump: wgsl or metal")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	f.BoolVar(&dump, "dump", false, "print the encoded first frame and exit without opening a window")
	return cmd
}

func loadScene(cfg gettingback.Config, log gettingback.Logger) (*gettingback.Scene, error) {
	if cfg.Scene == "" {
		return gettingback.NewTestScene(cfg.Width, cfg.Height, log)
	}
	return gettingback.LoadSceneFile(cfg.Scene, cfg.Width, cfg.Height, log)
}

func shaderSource(cfg gettingback.Config) (string, error) {
	if cfg.Shader == "" {
		return shaders.LitWGSL, nil
	}
	src, err := os.ReadFile(cfg.Shader)
	if err != nil {
		return "", fmt.Errorf("failed to read shader: %w", err)
	}
	return string(src), nil
}

// dumpFrame encodes one frame for the configured target and prints every
// payload.
func dumpFrame(out io.Writer, cfg gettingback.Config, log gettingback.Logger) error {
	s, err := loadScene(cfg, log)
	if err != nil {
		return err
	}
	if err := s.Update(0); err != nil {
		return err
	}
	t := cfg.LayoutTarget()
	f, err := gettingback.BuildFrame(s, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scene %s, target %s, %d lights, %d draws\n", s.Name, t, f.LightCount, len(f.Draws))
	used := int(f.LightCount) * rev2.LightLayout(t).Stride()
	fmt.Fprintf(out, "lights (%d of %d bytes used)\n%s", used, len(f.Lights), hex.Dump(f.Lights[:used]))
	for _, d := range f.Draws {
		fmt.Fprintf(out, "draw %s\n", d.Node.Name)
		fmt.Fprintf(out, "uniforms (%d bytes)\n%s", len(d.UniformBytes), hex.Dump(d.UniformBytes))
		fmt.Fprintf(out, "fragment (%d bytes)\n%s", len(d.FragmentBytes), hex.Dump(d.FragmentBytes))
		fmt.Fprintf(out, "material (%d bytes)\n%s", len(d.MaterialBytes), hex.Dump(d.MaterialBytes))
	}
	return nil
}

func run(ctx context.Context, cfg gettingback.Config, log gettingback.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Destroy()

	scene, err := loadScene(cfg, log)
	if err != nil {
		return err
	}
	r, err := gpu.NewRenderer(win, gpu.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		VSync:      cfg.VSync,
		ClearColor: cfg.ClearColor,
	}, log)
	if err != nil {
		return err
	}
	defer r.Release()

	src, err := shaderSource(cfg)
	if err != nil {
		return err
	}
	if err := r.BuildPipeline(src); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	reload := make(chan string, 1)
	if cfg.Shader != "" {
		go watchShader(ctx, cfg.Shader, reload, log)
	}

	resized := false
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) { resized = true })

	clock := gettingback.NewClock(time.Now())
	for !win.ShouldClose() {
		glfw.PollEvents()

		select {
		case src := <-reload:
			if err := r.BuildPipeline(src); err != nil {
				log.Errorf("shader reload: %v", err)
			} else {
				log.Infof("reloaded %s", cfg.Shader)
			}
		default:
		}

		if resized {
			resized = false
			w, h := win.GetFramebufferSize()
			if err := r.Resize(uint32(w), uint32(h)); err != nil {
				return err
			}
			scene.Resize(uint32(w), uint32(h))
		}

		if err := scene.Update(clock.Tick(time.Now())); err != nil {
			return err
		}
		f, err := gettingback.BuildFrame(scene, layout.WGSL)
		if err != nil {
			return err
		}
		if err := r.Render(f); err != nil {
			log.Warnf("render: %v", err)
		}
	}
	return nil
}

// watchShader sends the new source of path after every write. A pending
// reload is replaced by a newer one.
func watchShader(ctx context.Context, path string, reload chan string, log gettingback.Logger) {
	err := shaders.Watch(ctx, path, func(p string) {
		src, err := os.ReadFile(p)
		if err != nil {
			log.Warnf("shader reload: %v", err)
			return
		}
		select {
		case <-reload:
		default:
		}
		reload <- string(src)
	}, func(err error) { log.Warnf("watch %s: %v", path, err) })
	if err != nil && ctx.Err() == nil {
		log.Errorf("stopped watching %s: %v", path, err)
	}
}
