// Package config loads the tunable sizes of a kiln device and frame loop from TOML.
package config

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/device"
	"github.com/vkngwrapper/kiln/heap"
	"github.com/vkngwrapper/kiln/memutils"
	"github.com/vkngwrapper/kiln/pool"
	"github.com/vkngwrapper/kiln/render"
)

// ErrInvalidOption is returned by Validate, and by Load and Parse, when an option is out of range
var ErrInvalidOption = errors.New("invalid option")

type Device struct {
	Width                 uint32 `toml:"width"`
	Height                uint32 `toml:"height"`
	HeapSize              int    `toml:"heap_size"`
	PoolCapacity          int    `toml:"pool_capacity"`
	ShaderDescriptors     int    `toml:"shader_descriptors"`
	TargetDescriptorChunk int    `toml:"target_descriptor_chunk"`
}

type Frame struct {
	MaxLatency        int `toml:"max_latency"`
	CommandBufferSize int `toml:"command_buffer_size"`
	RingSize          int `toml:"ring_size"`
	RingAlignment     int `toml:"ring_alignment"`
	CopySize          int `toml:"copy_size"`
}

// Scene sizes the generated scene the kiln command renders
type Scene struct {
	Models int `toml:"models"`
	Lights int `toml:"lights"`
}

type Config struct {
	Device Device `toml:"device"`
	Frame  Frame  `toml:"frame"`
	Scene  Scene  `toml:"scene"`
}

func Default() Config {
	return Config{
		Device: Device{
			Width:                 1280,
			Height:                720,
			HeapSize:              heap.DefaultHeapSize,
			PoolCapacity:          pool.DefaultCapacity,
			ShaderDescriptors:     descriptor.DefaultShaderHeapSize,
			TargetDescriptorChunk: descriptor.DefaultChunkSize,
		},
		Frame: Frame{
			MaxLatency:        frame.DefaultMaxLatency,
			CommandBufferSize: command.DefaultSize,
			RingSize:          frame.DefaultRingSize,
			RingAlignment:     frame.DefaultRingAlignment,
			CopySize:          frame.DefaultCopySize,
		},
		Scene: Scene{
			Models: 16,
			Lights: 4,
		},
	}
}

// Load reads the file at path over the defaults. Options the file leaves out keep their default
// values; keys the file names that kiln does not know are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidOption, format, args...)
}

func (c Config) Validate() error {
	if c.Device.Width == 0 || c.Device.Height == 0 {
		return invalid("device size %dx%d", c.Device.Width, c.Device.Height)
	}
	// frame textures are sized in uint16
	if c.Device.Width > math.MaxUint16 || c.Device.Height > math.MaxUint16 {
		return invalid("device size %dx%d is larger than %d", c.Device.Width, c.Device.Height, math.MaxUint16)
	}
	if c.Device.HeapSize <= 0 {
		return invalid("heap_size %d", c.Device.HeapSize)
	}
	if c.Device.PoolCapacity <= 0 || c.Device.PoolCapacity > pool.DefaultCapacity {
		return invalid("pool_capacity %d must be in [1, %d]", c.Device.PoolCapacity, pool.DefaultCapacity)
	}
	if c.Device.ShaderDescriptors <= 0 || c.Device.TargetDescriptorChunk <= 0 {
		return invalid("descriptor counts %d and %d", c.Device.ShaderDescriptors, c.Device.TargetDescriptorChunk)
	}

	if c.Frame.MaxLatency <= 0 {
		return invalid("max_latency %d", c.Frame.MaxLatency)
	}
	if c.Frame.CommandBufferSize <= 0 || c.Frame.CopySize <= 0 {
		return invalid("command_buffer_size %d and copy_size %d", c.Frame.CommandBufferSize, c.Frame.CopySize)
	}
	if err := memutils.CheckPow2(c.Frame.RingAlignment, "ring_alignment"); err != nil {
		return errors.Mark(err, ErrInvalidOption)
	}
	if c.Frame.RingSize < c.Frame.RingAlignment {
		return invalid("ring_size %d is smaller than ring_alignment %d", c.Frame.RingSize, c.Frame.RingAlignment)
	}

	if c.Scene.Models < 0 {
		return invalid("scene models %d", c.Scene.Models)
	}
	if c.Scene.Lights < 0 || c.Scene.Lights > render.MaxLights {
		return invalid("scene lights %d must be in [0, %d]", c.Scene.Lights, render.MaxLights)
	}
	return nil
}

// Write encodes c as TOML
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c Config) DeviceOptions() device.Options {
	return device.Options{
		SwapChain:             gpu.SwapChainDesc{Width: c.Device.Width, Height: c.Device.Height},
		HeapSize:              c.Device.HeapSize,
		ShaderDescriptors:     c.Device.ShaderDescriptors,
		TargetDescriptorChunk: c.Device.TargetDescriptorChunk,
		PoolCapacity:          c.Device.PoolCapacity,
	}
}

func (c Config) FrameOptions() frame.Options {
	return frame.Options{
		Width:             c.Device.Width,
		Height:            c.Device.Height,
		MaxLatency:        c.Frame.MaxLatency,
		CommandBufferSize: c.Frame.CommandBufferSize,
		RingSize:          c.Frame.RingSize,
		RingAlignment:     c.Frame.RingAlignment,
		CopySize:          c.Frame.CopySize,
	}
}
