package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/config"
)

const smallConfig = `
[device]
heap_size = 16777216

[frame]
ring_size = 1048576
copy_size = 1048576

[scene]
models = 9
lights = 3
`

func execute(t *testing.T, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "kiln.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestRenderCommand(t *testing.T) {
	path := writeConfig(t, smallConfig)

	stdout, stderr, err := execute(t, "render", "--config", path, "--frames", "4", "--width", "64", "--height", "48", "--stats")
	require.NoError(t, err)
	require.Contains(t, stdout, "rendered 4 frames at 64x48")
	require.Contains(t, stdout, `"Pools"`)
	require.Contains(t, stderr, "render pipeline created")
	require.NotContains(t, stderr, "UNRELEASED")
}

func TestRenderCommandResizes(t *testing.T) {
	path := writeConfig(t, smallConfig)

	stdout, stderr, err := execute(t, "render", "--config", path, "--frames", "4", "--width", "64", "--height", "48", "--resize", "96,64")
	require.NoError(t, err)
	require.Contains(t, stdout, "rendered 4 frames at 96x64")
	require.Contains(t, stderr, "grown=true")
}

func TestRenderCommandRejectsBadOptions(t *testing.T) {
	path := writeConfig(t, smallConfig)

	_, _, err := execute(t, "render", "--config", path, "--frames", "0")
	require.Error(t, err)

	_, _, err = execute(t, "render", "--config", path, "--resize", "10")
	require.Error(t, err)

	_, _, err = execute(t, "render", "--config", writeConfig(t, "[frame]\nring_alignment = 3\n"))
	require.ErrorIs(t, err, config.ErrInvalidOption)
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	stdout, _, err := execute(t, "config", "--config", writeConfig(t, smallConfig))
	require.NoError(t, err)

	cfg, err := config.Parse([]byte(stdout))
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Scene.Models)
	require.Equal(t, 1<<20, cfg.Frame.RingSize)
	require.Equal(t, config.Default().Device.Width, cfg.Device.Width)
}

func TestCubeStreams(t *testing.T) {
	streams, indices := cubeStreams()
	require.Len(t, streams[0], cubeVertices*12)
	require.Len(t, streams[3], cubeVertices*8)
	require.Len(t, indices, cubeIndices*4)
}
