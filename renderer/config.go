package renderer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"glscene/core"
)

// ToneMapping selects the operator applied in the fragment output stage.
type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	Uncharted2ToneMapping
	CineonToneMapping
)

var toneMappingNames = map[string]ToneMapping{
	"none":       NoToneMapping,
	"linear":     LinearToneMapping,
	"reinhard":   ReinhardToneMapping,
	"uncharted2": Uncharted2ToneMapping,
	"cineon":     CineonToneMapping,
}

func (t ToneMapping) String() string {
	for name, v := range toneMappingNames {
		if v == t {
			return name
		}
	}
	return "none"
}

func (t *ToneMapping) UnmarshalText(b []byte) error {
	v, ok := toneMappingNames[string(b)]
	if !ok {
		return fmt.Errorf("unknown tone mapping %q", b)
	}
	*t = v
	return nil
}

// ShadowType selects the shadow map filtering.
type ShadowType int

const (
	BasicShadowMap ShadowType = iota
	PCFShadowMap
	PCFSoftShadowMap
)

var shadowTypeNames = map[string]ShadowType{
	"basic":    BasicShadowMap,
	"pcf":      PCFShadowMap,
	"pcf-soft": PCFSoftShadowMap,
}

func (s *ShadowType) UnmarshalText(b []byte) error {
	v, ok := shadowTypeNames[string(b)]
	if !ok {
		return fmt.Errorf("unknown shadow type %q", b)
	}
	*s = v
	return nil
}

// CullMode selects which faces the shadow pass culls.
type CullMode int

const (
	CullFront CullMode = iota
	CullBack
)

func (c *CullMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "front":
		*c = CullFront
	case "back":
		*c = CullBack
	default:
		return fmt.Errorf("unknown cull mode %q", b)
	}
	return nil
}

// ShadowConfig configures the shadow map pass.
type ShadowConfig struct {
	Enabled    bool       `toml:"enabled"`
	Type       ShadowType `toml:"type"`
	AutoUpdate bool       `toml:"auto_update"`
	// CullFace is the face culled while rendering casters.
	CullFace CullMode `toml:"cull_face"`
	// RenderReverseSided swaps front and back side materials in the pass.
	RenderReverseSided bool `toml:"render_reverse_sided"`
	// RenderSingleSided draws double-sided materials single sided in the pass.
	RenderSingleSided bool `toml:"render_single_sided"`
}

// Config holds renderer settings.
type Config struct {
	// Precision is the default float precision: "highp", "mediump" or "lowp".
	Precision              string `toml:"precision"`
	Alpha                  bool   `toml:"alpha"`
	PremultipliedAlpha     bool   `toml:"premultiplied_alpha"`
	LogarithmicDepthBuffer bool   `toml:"logarithmic_depth_buffer"`

	AutoClear        bool `toml:"auto_clear"`
	AutoClearColor   bool `toml:"auto_clear_color"`
	AutoClearDepth   bool `toml:"auto_clear_depth"`
	AutoClearStencil bool `toml:"auto_clear_stencil"`
	SortObjects      bool `toml:"sort_objects"`

	GammaInput              bool    `toml:"gamma_input"`
	GammaOutput             bool    `toml:"gamma_output"`
	GammaFactor             float32 `toml:"gamma_factor"`
	PhysicallyCorrectLights bool    `toml:"physically_correct_lights"`

	ToneMapping         ToneMapping `toml:"tone_mapping"`
	ToneMappingExposure float32     `toml:"tone_mapping_exposure"`
	ToneMappingWhite    float32     `toml:"tone_mapping_white_point"`

	MaxMorphTargets int `toml:"max_morph_targets"`
	MaxMorphNormals int `toml:"max_morph_normals"`

	Shadows ShadowConfig `toml:"shadows"`

	ClearColor core.Color `toml:"clear_color"`
	ClearAlpha float32    `toml:"clear_alpha"`
	PixelRatio float32    `toml:"pixel_ratio"`
	LogLevel   string     `toml:"log_level"`

	// Logger overrides the package logger.
	Logger *zap.Logger `toml:"-"`
}

// DefaultConfig returns the settings a renderer starts with.
func DefaultConfig() Config {
	return Config{
		Precision:           "highp",
		PremultipliedAlpha:  true,
		AutoClear:           true,
		AutoClearColor:      true,
		AutoClearDepth:      true,
		AutoClearStencil:    true,
		SortObjects:         true,
		GammaFactor:         2,
		ToneMappingExposure: 1,
		ToneMappingWhite:    1,
		MaxMorphTargets:     8,
		MaxMorphNormals:     4,
		Shadows: ShadowConfig{
			Type:               PCFShadowMap,
			AutoUpdate:         true,
			RenderReverseSided: true,
			RenderSingleSided:  true,
		},
		ClearColor: core.ColorBlack,
		ClearAlpha: 1,
		PixelRatio: 1,
		LogLevel:   "info",
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Precision {
	case "highp", "mediump", "lowp":
	default:
		return fmt.Errorf("config: unknown precision %q", c.Precision)
	}
	if c.PixelRatio <= 0 {
		return fmt.Errorf("config: pixel_ratio must be positive, got %v", c.PixelRatio)
	}
	if c.MaxMorphTargets < 0 || c.MaxMorphNormals < 0 {
		return fmt.Errorf("config: morph budgets must not be negative")
	}
	return nil
}
