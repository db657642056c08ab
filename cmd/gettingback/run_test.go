package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/gettingback"
	"github.com/gekko3d/gettingback/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDump(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dump"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDumpTestScene(t *testing.T) {
	out, err := runDump(t)
	require.NoError(t, err)
	assert.Contains(t, out, "scene Test, target wgsl, 2 lights, 2 draws")
	assert.Contains(t, out, "lights (192 of 1536 bytes used)")
	assert.Contains(t, out, "draw sun")
	assert.Contains(t, out, "uniforms (336 bytes)")
	assert.Contains(t, out, "material (112 bytes)")

	out, err = runDump(t, "--target", "metal")
	require.NoError(t, err)
	assert.Contains(t, out, "target metal")
	assert.Contains(t, out, "material (128 bytes)")
}

func TestDumpDebugLogsToStderr(t *testing.T) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--dump", "--debug"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "scene Test")
	assert.NotContains(t, out.String(), "DEBUG")
	assert.Contains(t, errOut.String(), "[gettingback] DEBUG: scene Test: added sun")

	errOut.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--dump"})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, errOut.String())
}

func TestDumpConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scene, []byte("name: file\nnodes: [{name: a, shape: cube}]\n"), 0o644))
	cfg := filepath.Join(dir, "gettingback.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("target = \"metal\"\nscene = \""+filepath.ToSlash(scene)+"\"\n"), 0o644))

	out, err := runDump(t, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "scene file, target metal, 2 lights, 1 draws")

	out, err = runDump(t, "--config", cfg, "--target", "wgsl")
	require.NoError(t, err)
	assert.Contains(t, out, "scene file, target wgsl")

	_, err = runDump(t, "--target", "glsl")
	assert.ErrorIs(t, err, gettingback.ErrInvalidConfig)

	_, err = runDump(t, "--config", filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShaderSource(t *testing.T) {
	src, err := shaderSource(gettingback.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, shaders.LitWGSL, src)

	cfg := gettingback.DefaultConfig()
	cfg.Shader = filepath.Join(t.TempDir(), "lit.wgsl")
	_, err = shaderSource(cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(cfg.Shader, []byte("// custom"), 0o644))
	src, err = shaderSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "// custom", src)
}
