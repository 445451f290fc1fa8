package renderer

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"glscene/materials"
	"glscene/scene"
	"glscene/textures"
)

// ssaoKernelSize matches the kernel array length in ssaoFragment.
const ssaoKernelSize = 32

const ssaoFragment = `#version 410 core
precision highp float;
in vec2 vUv;
out vec4 fragColor;
uniform sampler2D tDepth;
uniform sampler2D tNoise;
uniform vec3 kernel[32];
uniform mat4 cameraProjection;
uniform mat4 cameraInverseProjection;
uniform float radius;
uniform float bias;
uniform vec2 noiseScale;

vec3 viewPosition( vec2 uv ) {
	float d = texture( tDepth, uv ).r * 2.0 - 1.0;
	vec4 p = cameraInverseProjection * vec4( uv * 2.0 - 1.0, d, 1.0 );
	return p.xyz / p.w;
}

void main() {
	if ( texture( tDepth, vUv ).r >= 0.9999 ) {
		fragColor = vec4( 1.0 );
		return;
	}
	vec3 pos = viewPosition( vUv );
	vec3 n = normalize( cross( dFdx( pos ), dFdy( pos ) ) );
	if ( dot( n, -pos ) < 0.0 ) n = -n;

	vec3 rnd = vec3( texture( tNoise, vUv * noiseScale ).xy * 2.0 - 1.0, 0.0 );
	vec3 t = normalize( rnd - n * dot( rnd, n ) );
	mat3 tbn = mat3( t, cross( n, t ), n );

	float occlusion = 0.0;
	for ( int i = 0; i < 32; i++ ) {
		vec3 s = pos + tbn * kernel[ i ] * radius;
		vec4 offset = cameraProjection * vec4( s, 1.0 );
		vec2 suv = clamp( offset.xy / offset.w * 0.5 + 0.5, 0.001, 0.999 );
		float z = viewPosition( suv ).z;
		float range = smoothstep( 0.0, 1.0, radius / max( abs( pos.z - z ), 0.0001 ) );
		occlusion += ( z >= s.z + bias ? 1.0 : 0.0 ) * range;
	}
	fragColor = vec4( vec3( 1.0 - occlusion / 32.0 ), 1.0 );
}
`

// The blurred occlusion is written with multiply blending onto the source
// color, so the pass never samples the target it draws into.
const ssaoBlurFragment = `#version 410 core
precision highp float;
in vec2 vUv;
out vec4 fragColor;
uniform sampler2D tAO;
uniform float strength;
void main() {
	vec2 texel = 1.0 / vec2( textureSize( tAO, 0 ) );
	float ao = 0.0;
	for ( int x = -2; x <= 2; x++ ) {
		for ( int y = -2; y <= 2; y++ ) {
			ao += texture( tAO, vUv + vec2( x, y ) * texel ).r;
		}
	}
	ao = mix( 1.0, ao / 25.0, strength );
	fragColor = vec4( vec3( ao ), 1.0 );
}
`

// SSAOPass darkens creases and contact areas of Source using its depth
// texture. Register it before a ToneMapPass reading the same target.
type SSAOPass struct {
	Source *RenderTarget
	// Radius is the sampling hemisphere radius in view-space units.
	Radius float32
	// Bias keeps flat surfaces from occluding themselves.
	Bias float32
	// Strength blends between no occlusion (0) and full occlusion (1).
	Strength float32

	ao           *RenderTarget
	aoMaterial   *materials.Material
	blurMaterial *materials.Material
	geometry     *scene.Geometry
	node         *scene.Node
	camera       *scene.Camera
	kernel       []mgl32.Vec3
	noise        *textures.Texture
}

// NewSSAOPass attaches a depth texture to source when it has none.
func NewSSAOPass(source *RenderTarget) *SSAOPass {
	if source.DepthTexture == nil {
		source.DepthTexture = textures.NewDepthTexture("ssao-depth", source.Width, source.Height)
	}

	g := scene.NewGeometry("fullscreen-triangle")
	g.SetAttribute("position", scene.NewAttribute([]float32{-1, -1, 0, 3, -1, 0, -1, 3, 0}, 3))

	ao := materials.NewShader(fullscreenVertex, ssaoFragment, nil, true)
	ao.Name = "ssao"
	blur := materials.NewShader(fullscreenVertex, ssaoBlurFragment, nil, true)
	blur.Name = "ssao blur"
	blur.Blending = materials.MultiplyBlending
	blur.Transparent = true
	for _, m := range []*materials.Material{ao, blur} {
		m.DepthTest = false
		m.DepthWrite = false
		m.Side = materials.DoubleSide
	}
	ao.Blending = materials.NoBlending

	n := scene.NewMesh("ssao", g, ao)
	n.FrustumCulled = false

	return &SSAOPass{
		Source:       source,
		Radius:       0.5,
		Bias:         0.025,
		Strength:     1,
		aoMaterial:   ao,
		blurMaterial: blur,
		geometry:     g,
		node:         n,
		camera:       scene.NewOrthographicCamera(-1, 1, 1, -1, -1, 1),
		kernel:       ssaoKernel(ssaoKernelSize, rand.New(rand.NewSource(42))),
		noise:        ssaoNoise(rand.New(rand.NewSource(123))),
	}
}

// ssaoKernel returns hemisphere samples around +Z, denser near the origin.
func ssaoKernel(n int, rng *rand.Rand) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		v := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()}
		if v.Len() < 1e-6 {
			v = mgl32.Vec3{0, 0, 1}
		}
		t := float32(i) / float32(n)
		out[i] = v.Normalize().Mul(0.1 + 0.9*t*t)
	}
	return out
}

// ssaoNoise returns a 4x4 tiling texture of random xy rotations.
func ssaoNoise(rng *rand.Rand) *textures.Texture {
	px := make([]byte, 4*4*4)
	for i := 0; i < 16; i++ {
		px[4*i] = byte(rng.Intn(256))
		px[4*i+1] = byte(rng.Intn(256))
		px[4*i+3] = 255
	}
	t := textures.New("ssao-noise", 4, 4, px)
	t.WrapS, t.WrapT = textures.Repeat, textures.Repeat
	t.MinFilter, t.MagFilter = textures.Nearest, textures.Nearest
	t.GenerateMipmaps = false
	return t
}

func (p *SSAOPass) Render(r *Renderer, _ *scene.Scene, camera *scene.Camera, target *RenderTarget) {
	if p.Source == nil || target != p.Source || p.Source.DepthTexture == nil || p.Strength <= 0 {
		return
	}
	w, h := p.Source.Width, p.Source.Height
	if p.ao == nil {
		p.ao = NewRenderTarget(w, h, textures.UnsignedByte)
		p.ao.DepthBuffer = false
	}
	p.ao.SetSize(w, h)

	proj := camera.GetProjectionMatrix()
	u := p.aoMaterial.Shader.Uniforms
	u["tDepth"] = p.Source.DepthTexture
	u["tNoise"] = p.noise
	u["kernel"] = p.kernel
	u["cameraProjection"] = proj
	u["cameraInverseProjection"] = proj.Inv()
	u["radius"] = p.Radius
	u["bias"] = p.Bias
	u["noiseScale"] = mgl32.Vec2{float32(w) / 4, float32(h) / 4}
	r.setRenderTarget(p.ao)
	r.renderObject(p.node, p.camera, nil, p.geometry, p.aoMaterial, nil)

	u = p.blurMaterial.Shader.Uniforms
	u["tAO"] = p.ao.Texture
	u["strength"] = p.Strength
	r.setRenderTarget(target)
	r.renderObject(p.node, p.camera, nil, p.geometry, p.blurMaterial, nil)
}

// Release frees the pass's occlusion target and programs.
func (p *SSAOPass) Release(r *Renderer) {
	if p.ao != nil {
		r.ReleaseRenderTarget(p.ao)
		p.ao = nil
	}
	r.ReleaseMaterial(p.aoMaterial)
	r.ReleaseMaterial(p.blurMaterial)
	r.ReleaseTexture(p.noise)
}
