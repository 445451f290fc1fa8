package renderer

import (
	"go.uber.org/zap"

	"glscene/gpu"
)

// Capabilities are the device limits the renderer budgets against.
type Capabilities struct {
	MaxTextures         int
	MaxVertexTextures   int
	MaxTextureSize      int
	MaxCubemapSize      int
	MaxAttributes       int
	MaxVertexUniforms   int
	MaxVaryings         int
	MaxFragmentUniforms int

	VertexTextures bool
	// Precision is the configured precision clamped to what the device has.
	Precision              string
	LogarithmicDepthBuffer bool
}

func newCapabilities(d gpu.Driver, cfg Config, log *zap.Logger) Capabilities {
	c := Capabilities{
		MaxTextures:            d.Limit(gpu.MaxTextureImageUnits),
		MaxVertexTextures:      d.Limit(gpu.MaxVertexTextureImageUnits),
		MaxTextureSize:         d.Limit(gpu.MaxTextureSize),
		MaxCubemapSize:         d.Limit(gpu.MaxCubeMapTextureSize),
		MaxAttributes:          d.Limit(gpu.MaxVertexAttribs),
		MaxVertexUniforms:      d.Limit(gpu.MaxVertexUniformVectors),
		MaxVaryings:            d.Limit(gpu.MaxVaryingVectors),
		MaxFragmentUniforms:    d.Limit(gpu.MaxFragmentUniformVectors),
		LogarithmicDepthBuffer: cfg.LogarithmicDepthBuffer,
	}
	if c.MaxTextures <= 0 {
		c.MaxTextures = 8
	}
	if c.MaxAttributes <= 0 {
		c.MaxAttributes = 16
	}
	c.VertexTextures = c.MaxVertexTextures > 0

	c.Precision = c.MaxPrecision(d, cfg.Precision)
	if c.Precision != cfg.Precision {
		log.Warn("precision not supported, using lower",
			zap.String("requested", cfg.Precision), zap.String("using", c.Precision))
	}
	return c
}

// MaxPrecision returns the highest precision not above want that both shader
// stages support.
func (c Capabilities) MaxPrecision(d gpu.Driver, want string) string {
	supported := func(p gpu.Precision) bool {
		return d.ShaderPrecision(gpu.VertexShader, p) > 0 && d.ShaderPrecision(gpu.FragmentShader, p) > 0
	}
	if want == "highp" {
		if supported(gpu.HighFloat) {
			return "highp"
		}
		want = "mediump"
	}
	if want == "mediump" && supported(gpu.MediumFloat) {
		return "mediump"
	}
	return "lowp"
}
