package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/internal/logger"
	"glscene/internal/opengl"
	"glscene/internal/window"
	"glscene/materials"
	"glscene/renderer"
	"glscene/scene"
	"glscene/textures"
)

const defaultVertex = `varying vec3 vNormal;
void main() {
	vNormal = normalize( normalMatrix * normal );
	gl_Position = projectionMatrix * modelViewMatrix * vec4( position, 1.0 );
}
`

const defaultFragment = `uniform float time;
varying vec3 vNormal;
void main() {
	vec3 c = 0.5 + 0.5 * cos( time + vNormal.xyx + vec3( 0.0, 2.0, 4.0 ) );
	gl_FragColor = vec4( c, 1.0 );
}
`

func main() {
	configPath := flag.String("config", "", "renderer TOML config")
	modelPath := flag.String("model", "", "glTF, GLB or OBJ model to add to the scene")
	shaderDir := flag.String("shaders", "", "directory with shader.vert/shader.frag to hot reload")
	hdr := flag.Bool("hdr", false, "render into a half-float target and tone map it to the screen")
	ssao := flag.Bool("ssao", false, "with -hdr, add screen-space ambient occlusion")
	flag.Parse()

	if err := run(*configPath, *modelPath, *shaderDir, *hdr, *ssao); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, modelPath, shaderDir string, hdr, ssao bool) error {
	cfg := renderer.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = renderer.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Log

	wc := window.DefaultConfig()
	wc.Title = "glscene demo"
	win, err := window.New(wc)
	if err != nil {
		return err
	}
	defer win.Destroy()

	driver, err := opengl.New(log)
	if err != nil {
		return err
	}
	defer driver.Destroy()

	cfg.PixelRatio = win.PixelRatio()
	cfg.Shadows.Enabled = true
	r, err := renderer.New(driver, cfg)
	if err != nil {
		return err
	}
	defer r.Dispose()
	r.SetSize(win.Width, win.Height)

	camera := scene.NewOrbitCamera(mgl32.Vec3{0, 1, 0}, 14, math32.Pi/3, float32(win.Width)/float32(win.Height))
	win.OnResize(func(w, h int) {
		if w == 0 || h == 0 {
			return
		}
		r.SetSize(w, h)
		camera.UpdateAspectRatio(float32(w), float32(h))
	})

	s, sun, sky := buildScene()
	if modelPath != "" {
		if err := addModel(s, modelPath); err != nil {
			log.Warn("model skipped", zap.String("path", modelPath), zap.Error(err))
		}
	}

	custom, reloader := customMaterial(shaderDir, log)
	if reloader != nil {
		defer reloader.Close()
	}
	knot := scene.NewMesh("Custom", scene.CreateTorus(1, 0.35, 48, 16), custom)
	knot.SetPosition(mgl32.Vec3{0, 1.5, 0})
	knot.CastShadow = true
	s.Add(knot)

	fire := scene.NewParticleEmitter(400, 6)
	fire.Position = mgl32.Vec3{4, 0.2, 4}
	s.Add(fire.Node)

	var target *renderer.RenderTarget
	if hdr {
		fw, fh := win.GetFramebufferSize()
		target = renderer.NewRenderTarget(fw, fh, textures.HalfFloat)
		if ssao {
			r.AddPlugin(renderer.NewSSAOPass(target))
		}
		pass := renderer.NewToneMapPass(target, renderer.ReinhardToneMapping)
		pass.Exposure = cfg.ToneMappingExposure
		pass.Gamma = 2.2
		r.AddPlugin(pass)
		win.OnResize(func(w, h int) {
			if w == 0 || h == 0 {
				return
			}
			r.SetSize(w, h)
			camera.UpdateAspectRatio(float32(w), float32(h))
			target.SetSize(win.GetFramebufferSize())
		})
	}

	dayNight := NewDayNight()
	var hud DebugOverlay
	var keyL, keyT, mouseDown bool
	last := win.Time()
	titleAt := last
	frames := 0

	log.Info("demo running", zap.Bool("hdr", hdr), zap.String("shaders", shaderDir))
	for !win.ShouldClose() {
		win.PollEvents()
		if win.IsKeyPressed(window.KeyEscape) {
			break
		}
		now := win.Time()
		dt := float32(now - last)
		last = now

		var yaw, pitch, zoom float32
		if win.IsKeyPressed(window.KeyA) {
			yaw -= dt
		}
		if win.IsKeyPressed(window.KeyD) {
			yaw += dt
		}
		if win.IsKeyPressed(window.KeyQ) {
			pitch -= dt
		}
		if win.IsKeyPressed(window.KeyE) {
			pitch += dt
		}
		if win.IsKeyPressed(window.KeyW) {
			zoom -= 8 * dt
		}
		if win.IsKeyPressed(window.KeyS) {
			zoom += 8 * dt
		}
		if yaw != 0 || pitch != 0 {
			camera.Orbit(yaw, pitch)
		}
		if zoom != 0 {
			camera.ZoomBy(zoom)
		}

		// L pauses the day cycle, T toggles shadows
		if down := win.IsKeyPressed(window.KeyL); down != keyL {
			if down {
				dayNight.Active = !dayNight.Active
			}
			keyL = down
		}
		if down := win.IsKeyPressed(window.KeyT); down != keyT {
			if down {
				r.ShadowMap().Enabled = !r.ShadowMap().Enabled
			}
			keyT = down
		}

		if down := win.IsMouseButtonPressed(window.MouseLeft); down != mouseDown {
			if down {
				pick(s, &camera.Camera, win, log)
			}
			mouseDown = down
		}

		dayNight.Update(dt)
		dayNight.Apply(r, s, sun, sky)
		fire.Update(dt)
		if reloader != nil {
			reloader.Apply(custom)
		}
		custom.Shader.Uniforms["time"] = float32(now)
		knot.Rotate(mgl32.Vec3{0, 1, 0}, 0.5*dt)

		r.Render(s, &camera.Camera, target, false)
		win.SwapBuffers()

		frames++
		if now-titleAt >= 1 {
			hud.Clear()
			hud.AddLine("%.0f fps", float64(frames)/(now-titleAt))
			hud.AddLine("%s", dayNight.TimeOfDayStr())
			hud.AddStats(r.Info())
			win.SetTitle("glscene demo | " + hud.GetText())
			frames, titleAt = 0, now
		}
	}
	return nil
}

// buildScene lays out a small lit courtyard and returns the sun and sky
// lights the day cycle drives.
func buildScene() (s *scene.Scene, sun, sky *scene.Node) {
	s = scene.NewScene()
	s.Sky = scene.NewSky()

	ground := scene.NewMesh("Ground", scene.CreatePlane(40, 40, 1), materials.NewPhong(core.Color{R: 0.62, G: 0.58, B: 0.52, A: 1}, 4))
	ground.ReceiveShadow = true
	s.Add(ground)

	gridMat := materials.New(materials.KindLineBasic)
	gridMat.VertexColors = materials.VertexColorsOn
	grid := scene.NewLine("Grid", scene.KindLineSegments, scene.CreateGrid(40, 20), gridMat)
	grid.SetPosition(mgl32.Vec3{0, 0.01, 0})
	s.Add(grid)

	stone := materials.NewPhong(core.Color{R: 0.58, G: 0.55, B: 0.50, A: 1}, 8)
	brick := materials.New(materials.KindLambert)
	brick.Color = core.Color{R: 0.70, G: 0.43, B: 0.30, A: 1}
	metal := materials.NewStandard(core.Color{R: 0.14, G: 0.14, B: 0.12, A: 1}, 0.95, 0.15)
	marble := materials.NewStandard(core.Color{R: 0.92, G: 0.90, B: 0.86, A: 1}, 0, 0.25)

	addBox := func(name string, pos, size mgl32.Vec3, m *materials.Material) {
		n := scene.NewMesh(name, scene.CreateBox(1, 1, 1), m)
		n.SetPosition(pos)
		n.SetScale(size)
		n.CastShadow, n.ReceiveShadow = true, true
		s.Add(n)
	}
	addBox("Tower", mgl32.Vec3{-10, 4.5, -10}, mgl32.Vec3{6, 9, 6}, stone)
	addBox("Hall", mgl32.Vec3{10, 2.5, -10}, mgl32.Vec3{10, 5, 6}, brick)
	addBox("House", mgl32.Vec3{-10, 2, 10}, mgl32.Vec3{6, 4, 6}, brick)

	ball := scene.NewMesh("Ball", scene.CreateSphere(1, 32, 16), marble)
	ball.SetPosition(mgl32.Vec3{-4, 1, 3})
	ball.CastShadow = true
	s.Add(ball)

	for i, p := range []mgl32.Vec3{{-5, 0, -5}, {5, 0, -5}, {-5, 0, 5}, {5, 0, 5}} {
		pole := scene.NewMesh(fmt.Sprintf("LampPole%d", i), scene.CreateBox(0.15, 4.8, 0.15), metal)
		pole.SetPosition(p.Add(mgl32.Vec3{0, 2.4, 0}))
		pole.CastShadow = true
		s.Add(pole)

		lamp := scene.NewPointLight(core.Color{R: 1, G: 0.8, B: 0.45, A: 1}, 1.5, 12, 2)
		lamp.SetPosition(p.Add(mgl32.Vec3{0, 5, 0}))
		s.Add(lamp)

		glowMat := materials.New(materials.KindSprite)
		glowMat.Map = textures.NewSolidTexture("glow", 255, 210, 120, 255)
		glowMat.Blending = materials.AdditiveBlending
		glowMat.Transparent = true
		glow := scene.NewSprite(fmt.Sprintf("LampGlow%d", i), glowMat)
		glow.SetPosition(p.Add(mgl32.Vec3{0, 5, 0}))
		glow.SetScale(mgl32.Vec3{0.6, 0.6, 1})
		s.Add(glow)
	}

	sun = scene.NewDirectionalLight(core.ColorWhite, 1.2)
	sun.CastShadow = true
	s.Add(sun)

	flareTex := textures.NewSolidTexture("flare", 255, 255, 255, 255)
	flare := scene.NewLensFlare("SunFlare",
		scene.FlareElement{Texture: flareTex, Size: 160, Distance: 0, Opacity: 0.6, Color: core.ColorWhite},
		scene.FlareElement{Texture: flareTex, Size: 40, Distance: 0.6, Opacity: 0.3, Color: core.Color{R: 0.7, G: 0.8, B: 1, A: 1}},
		scene.FlareElement{Texture: flareTex, Size: 70, Distance: 0.9, Opacity: 0.2, Color: core.Color{R: 1, G: 0.7, B: 0.5, A: 1}},
	)
	sun.AddChild(flare)

	sky = scene.NewHemisphereLight(core.ColorWhite, core.ColorBlack, 0.6)
	s.Add(sky)
	return s, sun, sky
}

// pick logs the nearest mesh under the cursor.
func pick(s *scene.Scene, camera *scene.Camera, win *window.Window, log *zap.Logger) {
	x, y := win.GetCursorPos()
	ray := scene.RayFromScreen(float32(x), float32(y), float32(win.Width), float32(win.Height), camera)
	hits := scene.Raycast(ray, s.Root, camera.Layers)
	if len(hits) == 0 {
		return
	}
	h := hits[0]
	log.Info("picked", zap.String("node", h.Node.Name), zap.Float32("distance", h.Distance), zap.Int("face", h.Face))
}

// addModel loads a glTF/GLB or OBJ file into s.
func addModel(s *scene.Scene, path string) error {
	cache := textures.NewManager()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		res, err := scene.LoadGLTF(path, cache)
		if err != nil {
			return err
		}
		s.Add(res.Roots...)
	case ".obj":
		nodes, err := scene.LoadOBJ(path, cache)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			n.CastShadow, n.ReceiveShadow = true, true
		}
		s.Add(nodes...)
	default:
		return fmt.Errorf("unsupported model format %q", filepath.Ext(path))
	}
	return nil
}

// customMaterial returns the hot-reloaded shader material when dir is set,
// else the built-in one.
func customMaterial(dir string, log *zap.Logger) (*materials.Material, *ShaderReloader) {
	uniforms := map[string]any{"time": float32(0)}
	if dir != "" {
		sr, err := NewShaderReloader(dir, log)
		if err == nil {
			var m *materials.Material
			if m, err = sr.Material(uniforms); err == nil {
				return m, sr
			}
			sr.Close()
		}
		log.Warn("shader hot reload disabled", zap.String("dir", dir), zap.Error(err))
	}
	m := materials.NewShader(defaultVertex, defaultFragment, uniforms, false)
	m.Name = "rainbow"
	return m, nil
}
