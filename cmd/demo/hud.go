package main

import (
	"fmt"
	"strings"

	"glscene/renderer"
)

// DebugOverlay collects the status lines shown in the window title.
type DebugOverlay struct {
	lines []string
}

func (do *DebugOverlay) AddLine(format string, args ...any) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

// AddStats appends the renderer's frame counters.
func (do *DebugOverlay) AddStats(info renderer.Info) {
	do.AddLine("%d calls", info.Render.Calls)
	do.AddLine("%d tris", info.Render.Faces)
	do.AddLine("%d programs", info.Programs)
	do.AddLine("%d tex / %d geo", info.Memory.Textures, info.Memory.Geometries)
}

func (do *DebugOverlay) GetText() string {
	return strings.Join(do.lines, " | ")
}
