package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/pkg/observability"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FRAMECORE_LOGGER_LEVEL", "error")
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRenderDemoPage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.png")
	stdout, err := runCmd(t, "render", "--out", out, "--width", "320", "--height", "240", "--frames", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out+" (320x240")

	img := decodePNG(t, out)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestRenderDarkInvertsCanvas(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(input, []byte(`<p>plain</p>`), 0o644))

	light := filepath.Join(dir, "light.png")
	_, err := runCmd(t, "render", "-i", input, "-o", light, "--width", "64", "--height", "64")
	require.NoError(t, err)
	dark := filepath.Join(dir, "dark.png")
	_, err = runCmd(t, "render", "-i", input, "-o", dark, "--width", "64", "--height", "64", "--dark")
	require.NoError(t, err)

	lr, _, _, _ := decodePNG(t, light).At(60, 60).RGBA()
	dr, _, _, _ := decodePNG(t, dark).At(60, 60).RGBA()
	assert.Greater(t, lr>>8, uint32(200), "light canvas is white")
	assert.Less(t, dr>>8, uint32(80), "dark canvas is inverted")
}

func TestRenderRejectsBadFlags(t *testing.T) {
	_, err := runCmd(t, "render", "--frames", "0", "-o", filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)

	_, err = runCmd(t, "render", "--width", "0", "-o", filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
}

func TestClassifyIcon(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 8; y < 24; y++ {
		for x := 8; x < 24; x++ {
			img.Set(x, y, color.NRGBA{A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	stdout, err := runCmd(t, "classify", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "png 32x32, 1 frame(s)")
	assert.Contains(t, stdout, "frame 0: apply")
}

func TestClassifyMissingFile(t *testing.T) {
	_, err := runCmd(t, "classify", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dark_mode:\n  algorithm: sepia\n"), 0o644))
	_, err := runCmd(t, "--config", path, "render", "-o", filepath.Join(t.TempDir(), "x.png"))
	require.ErrorContains(t, err, "load config")
}
