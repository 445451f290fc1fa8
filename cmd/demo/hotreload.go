package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"glscene/materials"
)

// ShaderReloader watches a directory holding shader.vert and shader.frag and
// feeds edits into a custom shader material. Events arrive on a watcher
// goroutine; Apply runs on the render goroutine.
type ShaderReloader struct {
	dir     string
	log     *zap.Logger
	watcher *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
}

func shaderPaths(dir string) (vert, frag string) {
	return filepath.Join(dir, "shader.vert"), filepath.Join(dir, "shader.frag")
}

// NewShaderReloader starts watching dir.
func NewShaderReloader(dir string, log *zap.Logger) (*ShaderReloader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}
	sr := &ShaderReloader{
		dir:     dir,
		log:     log,
		watcher: w,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go sr.watch()
	return sr, nil
}

func (sr *ShaderReloader) watch() {
	vert, frag := shaderPaths(sr.dir)
	for {
		select {
		case ev, ok := <-sr.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != vert && ev.Name != frag {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			select {
			case sr.changed <- struct{}{}:
			default:
			}
		case err, ok := <-sr.watcher.Errors:
			if !ok {
				return
			}
			sr.log.Warn("shader watcher", zap.Error(err))
		case <-sr.done:
			return
		}
	}
}

// Material builds a KindShader material from the current sources.
func (sr *ShaderReloader) Material(uniforms map[string]any) (*materials.Material, error) {
	m := materials.NewShader("", "", uniforms, false)
	m.Name = "hot-reload"
	if err := loadShaderSources(sr.dir, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply reloads m when a watched file changed since the last call.
func (sr *ShaderReloader) Apply(m *materials.Material) {
	select {
	case <-sr.changed:
	default:
		return
	}
	if err := loadShaderSources(sr.dir, m); err != nil {
		sr.log.Warn("shader reload failed", zap.Error(err))
		return
	}
	sr.log.Info("shader reloaded", zap.String("dir", sr.dir))
}

func (sr *ShaderReloader) Close() {
	close(sr.done)
	sr.watcher.Close()
}

// loadShaderSources reads both stages and flags m for a rebuild when either
// source differs.
func loadShaderSources(dir string, m *materials.Material) error {
	vertPath, fragPath := shaderPaths(dir)
	vert, err := os.ReadFile(vertPath)
	if err != nil {
		return fmt.Errorf("read vertex shader: %w", err)
	}
	frag, err := os.ReadFile(fragPath)
	if err != nil {
		return fmt.Errorf("read fragment shader: %w", err)
	}
	if m.Shader.VertexShader == string(vert) && m.Shader.FragmentShader == string(frag) {
		return nil
	}
	m.Shader.VertexShader = string(vert)
	m.Shader.FragmentShader = string(frag)
	m.NeedsUpdate()
	return nil
}
