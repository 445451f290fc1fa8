// Package shaderlib holds the GLSL sources of the built-in materials: shared
// chunks pulled in with #include <name>, and one vertex/fragment pair with
// default uniform values per shader id.
//
// Sources are written against a GLSL 1.0 vocabulary (attribute, varying,
// texture2D, gl_FragColor); the program builder prepends the defines that map
// it onto the core profile.
package shaderlib

import (
	"slices"

	"golang.org/x/exp/maps"
)

// Shader is one built-in program template.
type Shader struct {
	ID       string
	Vertex   string
	Fragment string
	// Uniforms returns a fresh map of default values. Each material owns its
	// copy.
	Uniforms func() map[string]any
}

var chunks = map[string]string{
	"common":                       common,
	"packing":                      packing,
	"encodings_pars_fragment":      encodingsParsFragment,
	"encodings_fragment":           encodingsFragment,
	"tonemapping_pars_fragment":    tonemappingParsFragment,
	"tonemapping_fragment":         tonemappingFragment,
	"premultiplied_alpha_fragment": premultipliedAlphaFragment,
	"dithering_pars_fragment":      ditheringParsFragment,
	"dithering_fragment":           ditheringFragment,

	"begin_vertex":         beginVertex,
	"beginnormal_vertex":   beginnormalVertex,
	"defaultnormal_vertex": defaultnormalVertex,
	"project_vertex":       projectVertex,
	"worldpos_vertex":      worldposVertex,

	"logdepthbuf_pars_vertex":   logdepthbufParsVertex,
	"logdepthbuf_vertex":        logdepthbufVertex,
	"logdepthbuf_pars_fragment": logdepthbufParsFragment,
	"logdepthbuf_fragment":      logdepthbufFragment,

	"clipping_planes_pars_vertex":   clippingPlanesParsVertex,
	"clipping_planes_vertex":        clippingPlanesVertex,
	"clipping_planes_pars_fragment": clippingPlanesParsFragment,
	"clipping_planes_fragment":      clippingPlanesFragment,

	"uv_pars_vertex":    uvParsVertex,
	"uv_vertex":         uvVertex,
	"uv_pars_fragment":  uvParsFragment,
	"uv2_pars_vertex":   uv2ParsVertex,
	"uv2_vertex":        uv2Vertex,
	"uv2_pars_fragment": uv2ParsFragment,

	"color_pars_vertex":   colorParsVertex,
	"color_vertex":        colorVertex,
	"color_pars_fragment": colorParsFragment,
	"color_fragment":      colorFragment,

	"map_pars_fragment":           mapParsFragment,
	"map_fragment":                mapFragment,
	"map_particle_pars_fragment":  mapParticleParsFragment,
	"map_particle_fragment":       mapParticleFragment,
	"alphamap_pars_fragment":      alphamapParsFragment,
	"alphamap_fragment":           alphamapFragment,
	"alphatest_fragment":          alphatestFragment,
	"aomap_pars_fragment":         aomapParsFragment,
	"aomap_fragment":              aomapFragment,
	"lightmap_pars_fragment":      lightmapParsFragment,
	"lightmap_fragment":           lightmapFragment,
	"specularmap_pars_fragment":   specularmapParsFragment,
	"specularmap_fragment":        specularmapFragment,
	"emissivemap_pars_fragment":   emissivemapParsFragment,
	"emissivemap_fragment":        emissivemapFragment,
	"roughnessmap_pars_fragment":  roughnessmapParsFragment,
	"roughnessmap_fragment":       roughnessmapFragment,
	"metalnessmap_pars_fragment":  metalnessmapParsFragment,
	"metalnessmap_fragment":       metalnessmapFragment,
	"gradientmap_pars_fragment":   gradientmapParsFragment,
	"displacementmap_pars_vertex": displacementmapParsVertex,
	"displacementmap_vertex":      displacementmapVertex,

	"normal_fragment_begin":   normalFragmentBegin,
	"normal_fragment_maps":    normalFragmentMaps,
	"normalmap_pars_fragment": normalmapParsFragment,
	"bumpmap_pars_fragment":   bumpmapParsFragment,

	"envmap_pars_vertex":   envmapParsVertex,
	"envmap_vertex":        envmapVertex,
	"envmap_pars_fragment": envmapParsFragment,
	"envmap_fragment":      envmapFragment,

	"fog_pars_vertex":   fogParsVertex,
	"fog_vertex":        fogVertex,
	"fog_pars_fragment": fogParsFragment,
	"fog_fragment":      fogFragment,

	"skinning_pars_vertex": skinningParsVertex,
	"skinbase_vertex":      skinbaseVertex,
	"skinning_vertex":      skinningVertex,
	"skinnormal_vertex":    skinnormalVertex,

	"morphtarget_pars_vertex": morphtargetParsVertex,
	"morphtarget_vertex":      morphtargetVertex,
	"morphnormal_vertex":      morphnormalVertex,

	"bsdfs":                         bsdfs,
	"lights_pars":                   lightsPars,
	"lights_lambert_vertex":         lightsLambertVertex,
	"lights_phong_pars_fragment":    lightsPhongParsFragment,
	"lights_phong_fragment":         lightsPhongFragment,
	"lights_physical_pars_fragment": lightsPhysicalParsFragment,
	"lights_physical_fragment":      lightsPhysicalFragment,
	"lights_template":               lightsTemplate,

	"shadowmap_pars_vertex":    shadowmapParsVertex,
	"shadowmap_vertex":         shadowmapVertex,
	"shadowmap_pars_fragment":  shadowmapParsFragment,
	"shadowmask_pars_fragment": shadowmaskParsFragment,
}

// Chunk returns the source of a named include.
func Chunk(name string) (string, bool) {
	src, ok := chunks[name]
	return src, ok
}

// ChunkNames lists every include name in sorted order.
func ChunkNames() []string {
	names := maps.Keys(chunks)
	slices.Sort(names)
	return names
}

// Get returns the built-in shader with the given id.
func Get(id string) (Shader, bool) {
	s, ok := shaders[id]
	return s, ok
}

// IDs lists the built-in shader ids in sorted order.
func IDs() []string {
	ids := maps.Keys(shaders)
	slices.Sort(ids)
	return ids
}

// merge folds uniform groups into one fresh map; later groups win.
func merge(groups ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, g := range groups {
		for k, v := range g {
			out[k] = v
		}
	}
	return out
}
