package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.validate())
	assert.Equal(t, 8, cfg.MaxMorphTargets)
	assert.Equal(t, 4, cfg.MaxMorphNormals)
	assert.True(t, cfg.AutoClear)
	assert.False(t, cfg.Shadows.Enabled)
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
precision = "mediump"
tone_mapping = "uncharted2"
tone_mapping_exposure = 1.5

[shadows]
enabled = true
type = "pcf-soft"
cull_face = "back"
`))
	require.NoError(t, err)
	assert.Equal(t, "mediump", cfg.Precision)
	assert.Equal(t, Uncharted2ToneMapping, cfg.ToneMapping)
	assert.Equal(t, float32(1.5), cfg.ToneMappingExposure)
	assert.True(t, cfg.Shadows.Enabled)
	assert.Equal(t, PCFSoftShadowMap, cfg.Shadows.Type)
	assert.Equal(t, CullBack, cfg.Shadows.CullFace)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.SortObjects)
	assert.Equal(t, float32(1), cfg.PixelRatio)
}

func TestParseConfigErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     `frobnicate = true`,
		"bad precision":   `precision = "ultra"`,
		"bad tone map":    `tone_mapping = "filmic"`,
		"bad shadow type": "[shadows]\ntype = \"vsm\"",
		"bad pixel ratio": `pixel_ratio = 0.0`,
		"bad morph count": `max_morph_targets = -1`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`gamma_output = true`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.GammaOutput)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")
}

func TestToneMappingString(t *testing.T) {
	assert.Equal(t, "reinhard", ReinhardToneMapping.String())
	assert.Equal(t, "none", NoToneMapping.String())
}
