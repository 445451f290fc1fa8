package main

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"glscene/core"
	"glscene/renderer"
	"glscene/scene"
)

// dayPalette holds the sky and light values for one key time of day.
type dayPalette struct {
	t            float32 // normalised time 0..1
	zenith       core.Color // overhead
	horizon      core.Color // eye level
	ground       core.Color
	fogColor     core.Color
	fogDensity   float32
	sunColor     core.Color
	sunIntensity float32
}

// palettes are ordered by t and wrap (0 == 1).
var palettes = []dayPalette{
	{ // noon
		t:            0.00,
		zenith:       core.Color{R: 0.20, G: 0.42, B: 0.90, A: 1},
		horizon:      core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		ground:       core.Color{R: 0.12, G: 0.10, B: 0.08, A: 1},
		fogColor:     core.Color{R: 0.62, G: 0.78, B: 0.95, A: 1},
		fogDensity:   0.011,
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 1.20,
	},
	{ // golden hour
		t:            0.22,
		zenith:       core.Color{R: 0.14, G: 0.20, B: 0.60, A: 1},
		horizon:      core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		ground:       core.Color{R: 0.08, G: 0.07, B: 0.06, A: 1},
		fogColor:     core.Color{R: 0.85, G: 0.55, B: 0.25, A: 1},
		fogDensity:   0.018,
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 0.90,
	},
	{ // dusk
		t:            0.30,
		zenith:       core.Color{R: 0.08, G: 0.10, B: 0.28, A: 1},
		horizon:      core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		ground:       core.Color{R: 0.04, G: 0.03, B: 0.04, A: 1},
		fogColor:     core.Color{R: 0.35, G: 0.18, B: 0.22, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.25,
	},
	{ // midnight
		t:            0.50,
		zenith:       core.Color{R: 0.02, G: 0.03, B: 0.10, A: 1},
		horizon:      core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		ground:       core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
		fogColor:     core.Color{R: 0.03, G: 0.03, B: 0.06, A: 1},
		fogDensity:   0.010,
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1}, // moonlight
		sunIntensity: 0.12,
	},
	{ // pre-dawn
		t:            0.70,
		zenith:       core.Color{R: 0.06, G: 0.08, B: 0.25, A: 1},
		horizon:      core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1},
		ground:       core.Color{R: 0.03, G: 0.03, B: 0.04, A: 1},
		fogColor:     core.Color{R: 0.30, G: 0.15, B: 0.20, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1},
		sunIntensity: 0.30,
	},
	{ // sunrise
		t:            0.80,
		zenith:       core.Color{R: 0.12, G: 0.18, B: 0.55, A: 1},
		horizon:      core.Color{R: 0.95, G: 0.60, B: 0.30, A: 1},
		ground:       core.Color{R: 0.07, G: 0.06, B: 0.05, A: 1},
		fogColor:     core.Color{R: 0.90, G: 0.62, B: 0.38, A: 1},
		fogDensity:   0.016,
		sunColor:     core.Color{R: 1.00, G: 0.72, B: 0.40, A: 1},
		sunIntensity: 0.80,
	},
}

// DayNight drives the animated day/night cycle.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 120, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	if dn.Time >= 1 {
		dn.Time -= 1
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette interpolates between the two keys surrounding t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	ta, tb := a.t-1, b.t
	for i := range n - 1 {
		if t >= palettes[i].t && t < palettes[i+1].t {
			a, b = palettes[i], palettes[i+1]
			ta, tb = a.t, b.t
			break
		}
	}
	if t >= palettes[n-1].t {
		ta, tb = a.t, b.t+1
	}
	k := (t - ta) / (tb - ta)

	return dayPalette{
		zenith:       lerpColor(a.zenith, b.zenith, k),
		horizon:      lerpColor(a.horizon, b.horizon, k),
		ground:       lerpColor(a.ground, b.ground, k),
		fogColor:     lerpColor(a.fogColor, b.fogColor, k),
		fogDensity:   a.fogDensity + (b.fogDensity-a.fogDensity)*k,
		sunColor:     lerpColor(a.sunColor, b.sunColor, k),
		sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*k,
	}
}

// Apply moves the sun and recolors the sky gradient, sky light, fog and
// clear color.
func (dn *DayNight) Apply(r *renderer.Renderer, s *scene.Scene, sun, sky *scene.Node) {
	p := samplePalette(dn.Time)

	angle := dn.Time * 2 * math32.Pi
	dir := mgl32.Vec3{math32.Sin(angle), math32.Cos(angle), 0.35}.Normalize()
	if sun != nil && sun.Light != nil {
		sun.SetPosition(dir.Mul(40))
		sun.Light.Color = p.sunColor
		sun.Light.Intensity = p.sunIntensity
	}
	if sky != nil && sky.Light != nil {
		sky.Light.Color = p.horizon
		sky.Light.GroundColor = p.ground
	}
	if s.Sky != nil {
		s.Sky.Zenith = p.zenith
		s.Sky.Horizon = p.horizon
		s.Sky.Ground = p.ground
	}
	if s.Fog == nil {
		s.Fog = scene.NewFogExp2(p.fogColor, p.fogDensity)
	}
	s.Fog.Color = p.fogColor
	s.Fog.Density = p.fogDensity
	r.SetClearColor(p.fogColor, 1)
}

// TimeOfDayStr returns a 12-hour clock label where Time 0 is noon.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time*24 + 12
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	displayH := h % 12
	if displayH == 0 {
		displayH = 12
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
