package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/kiln/config"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu/device"
	"github.com/vkngwrapper/kiln/gpu/native/fake"
	"github.com/vkngwrapper/kiln/render"
	"golang.org/x/exp/slog"
)

type renderOptions struct {
	configPath string
	frames     int
	width      uint32
	height     uint32
	resizeTo   []uint
	stats      bool
	verbose    bool
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames of a generated scene and report the submission counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if opts.configPath != "" {
				var err error
				if cfg, err = config.Load(opts.configPath); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("width") {
				cfg.Device.Width = opts.width
			}
			if flags.Changed("height") {
				cfg.Device.Height = opts.height
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.frames <= 0 {
				return errors.Newf("--frames must be positive, got %d", opts.frames)
			}
			if len(opts.resizeTo) != 0 && len(opts.resizeTo) != 2 {
				return errors.New("--resize takes a width and a height")
			}

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(cmd.ErrOrStderr()))

			return runRender(logger, cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "TOML file to read over the defaults")
	flags.IntVar(&opts.frames, "frames", 3, "number of frames to render")
	flags.Uint32Var(&opts.width, "width", 0, "swapchain width, overriding the config")
	flags.Uint32Var(&opts.height, "height", 0, "swapchain height, overriding the config")
	flags.UintSliceVar(&opts.resizeTo, "resize", nil, "width,height to resize to halfway through")
	flags.BoolVar(&opts.stats, "stats", false, "print the device statistics as JSON when done")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-frame bookkeeping")
	return cmd
}

// placeholderCompiler stands in for a shader compiler on the in-memory backend, which only
// checks that bytecode is present
type placeholderCompiler struct{}

func (placeholderCompiler) Compile(desc render.ShaderDesc) ([]byte, error) {
	return []byte(fmt.Sprintf("%s:%s:%s", desc.Path, desc.EntryPoint, desc.Stage)), nil
}

// session is everything one render run creates, torn down in reverse
type session struct {
	device   *device.Device
	frame    *frame.Frame
	renderer *render.Renderer
	sky      *render.Sky
	pipeline *render.RenderPipeline
	scene    *demoScene
}

func newSession(logger *slog.Logger, cfg config.Config) (*session, error) {
	backend := fake.NewDevice(fake.Options{TimestampFrequency: 1_000_000_000})

	dev, err := device.New(logger, backend, cfg.DeviceOptions())
	if err != nil {
		return nil, err
	}
	s := &session{device: dev}

	s.frame, err = frame.New(logger, dev, cfg.FrameOptions())
	if err != nil {
		return nil, s.destroy(err)
	}

	var compiler placeholderCompiler
	if s.renderer, err = render.NewRenderer(s.frame, compiler); err != nil {
		return nil, s.destroy(err)
	}
	if s.sky, err = render.NewSky(s.frame, compiler); err != nil {
		return nil, s.destroy(err)
	}
	if s.pipeline, err = render.New(logger, s.frame, s.renderer, s.sky, compiler); err != nil {
		return nil, s.destroy(err)
	}

	if s.scene, err = newDemoScene(s.frame, cfg.Scene); err != nil {
		return nil, s.destroy(err)
	}
	s.sky.SetTexture(s.scene.sky, s.scene.skyDesc)
	return s, nil
}

// destroy releases whatever the session got as far as creating and joins cause with any leak the
// device reports
func (s *session) destroy(cause error) error {
	if s.frame != nil {
		s.frame.Wait()
	}
	if s.pipeline != nil {
		s.pipeline.Destroy()
	}
	if s.sky != nil {
		s.sky.Destroy()
	}
	if s.scene != nil {
		s.scene.Destroy()
	}
	if s.frame != nil {
		s.frame.Destroy()
	}

	if err := s.device.Destroy(); err != nil {
		if cause == nil {
			return err
		}
		return errors.WithSecondaryError(cause, err)
	}
	return cause
}

// renderFrame records and presents one frame and returns the number of meshes it drew
func (s *session) renderFrame() (int, error) {
	s.frame.Begin()
	defer s.renderer.Clear()

	s.scene.update(s.renderer, s.frame.Index())
	if err := s.renderer.Build(s.scene.camera); err != nil {
		return 0, errors.Wrap(err, "failed to build render queues")
	}
	if err := s.scene.upload(); err != nil {
		return 0, errors.Wrap(err, "failed to upload lights")
	}
	if err := s.pipeline.Render(s.scene); err != nil {
		return 0, err
	}
	drawn := s.renderer.Visible()

	fence := s.frame.Present()
	s.frame.Logger().Debug("frame presented",
		slog.Uint64("frame", s.frame.Index()-1),
		slog.Uint64("fence", fence.Value),
		slog.Int("drawn", drawn),
		slog.Int("culled", s.renderer.Culled()),
	)
	return drawn, nil
}

func (s *session) resize(width, height uint32) error {
	grown, err := s.frame.Resize(width, height)
	if err != nil {
		return err
	}
	s.scene.camera.setAspect(float32(width) / float32(height))
	s.frame.Logger().Info("resized", slog.Int("width", int(width)), slog.Int("height", int(height)), slog.Bool("grown", grown))
	return nil
}

func runRender(logger *slog.Logger, out io.Writer, cfg config.Config, opts renderOptions) error {
	s, err := newSession(logger, cfg)
	if err != nil {
		return err
	}

	visible, culled := 0, 0
	for i := 0; i < opts.frames; i++ {
		if len(opts.resizeTo) == 2 && i == opts.frames/2 {
			if err := s.resize(uint32(opts.resizeTo[0]), uint32(opts.resizeTo[1])); err != nil {
				return s.destroy(err)
			}
		}

		drawn, err := s.renderFrame()
		if err != nil {
			return s.destroy(errors.Wrapf(err, "frame %d", i))
		}
		visible += drawn
		culled += s.renderer.Culled()
	}
	s.frame.Wait()

	fmt.Fprintf(out, "rendered %d frames at %dx%d: %d meshes drawn, %d culled\n",
		opts.frames, s.frame.Width(), s.frame.Height(), visible, culled)
	if opts.stats {
		fmt.Fprintln(out, s.device.BuildStatsString(true))
	}

	return s.destroy(nil)
}
