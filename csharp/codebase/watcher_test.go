package codebase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherScan(t *testing.T) {
	c, dir := load(t, map[string]string{"main.cs": mainSrc})
	main := filepath.Join(dir, "main.cs")
	widget := filepath.Join(dir, "widget.cs")

	w := NewFileWatcher(c)
	var notified [][]string
	w.OnChange(func(paths []string) { notified = append(notified, paths) })

	assert.Equal(t, []string{main}, w.scan())
	assert.Empty(t, w.scan())

	writeFiles(t, dir, map[string]string{"widget.cs": widgetSrc})
	assert.Equal(t, []string{widget}, w.scan())
	assert.Empty(t, resolveFindings(c, main))

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(main, []byte(mainSrc+"// edited\n"), 0o644))
	require.NoError(t, os.Chtimes(main, later, later))
	assert.Equal(t, []string{main}, w.scan())
	assert.Contains(t, string(c.GetFile(main).Content), "// edited")

	require.NoError(t, os.Remove(widget))
	assert.Equal(t, []string{widget}, w.scan())
	assert.Nil(t, c.GetFile(widget))
	assert.NotEmpty(t, resolveFindings(c, main))

	assert.Len(t, notified, 4)
}

func TestWatcherStop(t *testing.T) {
	c, _ := load(t, nil)
	w := NewFileWatcher(c)
	w.SetInterval(10 * time.Millisecond)
	w.Start()
	w.Stop()
	w.Stop()
}
