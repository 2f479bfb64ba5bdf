package logging_test

import (
	"bytes"
	"testing"

	"github.com/rook-computer/mirror/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logging.New(buf)

	l.Debugf("loop", "hidden %d", 1)
	l.Infof("loop", "frame %d", 2)
	l.Errorf("registry", "failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="frame 2"`)
	assert.Contains(t, out, "component=loop")
	assert.Contains(t, out, "level=ERROR")

	buf.Reset()
	l.SetVerbose(true)
	l.Debugf("loop", "shown")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestSetOutput(t *testing.T) {
	first, second := &bytes.Buffer{}, &bytes.Buffer{}
	l := logging.New(first)
	l.SetOutput(second)

	l.Warnf("cache", "degraded")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "level=WARN")
}

func TestScoped(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logging.Scoped(logging.New(buf), "clock")

	l.Infof("", "tick")
	assert.Contains(t, buf.String(), "component=clock\n")

	buf.Reset()
	l.Infof("font", "loaded")
	assert.Contains(t, buf.String(), "component=clock/font")
}
