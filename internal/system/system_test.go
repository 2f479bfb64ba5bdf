package system_test

import (
	"path/filepath"
	"testing"

	"github.com/rook-computer/mirror/internal/system"
	"github.com/stretchr/testify/assert"
)

func TestConsoleWithoutTerminalFails(t *testing.T) {
	c := system.NewConsole(nil)
	c.Paths = []string{filepath.Join(t.TempDir(), "no-tty")}

	assert.Error(t, c.Acquire())
	assert.Error(t, c.Release())
}

func TestExitKeys(t *testing.T) {
	assert.ElementsMatch(t, []uint16{1, 16, 62}, system.ExitKeys)
}

func TestRedirectStdIO(t *testing.T) {
	assert.NoError(t, system.RedirectStdIO(""))
	assert.Error(t, system.RedirectStdIO(filepath.Join(t.TempDir(), "missing", "stdio.log")))
}
