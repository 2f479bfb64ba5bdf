package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVersion(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	code := run(context.Background(), []string{"version"}, stdout, stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "mirror version")
	assert.Empty(t, stderr.String())
}

func TestRunReportsErrors(t *testing.T) {
	stderr := new(bytes.Buffer)

	code := run(context.Background(), []string{"run", "-c", filepath.Join(t.TempDir(), "nope.yaml"), "--headless"}, new(bytes.Buffer), stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), "config error")
}

const builtinsConfig = `
mirror:
  screen_width: 400
  screen_height: 300
  scale: 0.5
  fps: 100
  splash: 0
  cache_dir: cache
modules:
  clock:
    source: clock
    top: 10
    left: 10
    width: 380
    height: 100
    font_size: 60
  greeting:
    source: text
    top: 120
    left: 0
    width: 400
    height: 60
    text: Hello
    adjust: center
    shadow: yes
  wifi:
    source: qrcode
    top: -10
    left: 10
    width: 100
    height: 100
    payload: "WIFI:T:WPA;S:guests;P:changeme;;"
  status:
    source: demo
    top: -10
    left: -10
    width: 150
    height: 80
`

func TestRunBuiltinsHeadless(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mirror.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(builtinsConfig), 0o644))
	snapshot := filepath.Join(dir, "frame.png")
	stderr := new(bytes.Buffer)

	code := run(context.Background(), []string{"run", "-c", cfgPath, "--snapshot", snapshot, "--frames", "3"}, new(bytes.Buffer), stderr)
	require.Equal(t, 0, code, stderr.String())

	f, err := os.Open(snapshot)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
	assert.NotContains(t, stderr.String(), "disabled")
}
