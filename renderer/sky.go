package renderer

import (
	"glscene/materials"
	"glscene/scene"
)

// The translation of viewMatrix is dropped and xyww pins every fragment to
// the far plane, so the cube stays centered on the camera and behind scene
// geometry.
const skyVertex = `#version 410 core
in vec3 position;
uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
out vec3 vDirection;
void main() {
	vDirection = position;
	vec4 pos = projectionMatrix * vec4( mat3( viewMatrix ) * position, 1.0 );
	gl_Position = pos.xyww;
}
`

const skyFragment = `#version 410 core
precision highp float;
in vec3 vDirection;
out vec4 fragColor;
uniform vec3 zenith;
uniform vec3 horizon;
uniform vec3 ground;
void main() {
	float t = normalize( vDirection ).y;
	vec3 color;
	if ( t >= 0.0 ) {
		color = mix( horizon, zenith, pow( t, 0.4 ) );
	} else {
		color = mix( horizon, ground, min( -t * 3.0, 1.0 ) );
	}
	fragColor = vec4( color, 1.0 );
}
`

// skyPass draws a scene's gradient sky on a unit cube around the camera.
type skyPass struct {
	material *materials.Material
	geometry *scene.Geometry
	node     *scene.Node
}

func newSkyPass() *skyPass {
	m := materials.NewShader(skyVertex, skyFragment, nil, true)
	m.Name = "sky"
	m.DepthWrite = false
	m.DepthFunc = materials.LessEqualDepth
	m.Side = materials.DoubleSide

	g := scene.CreateBox(2, 2, 2)
	n := scene.NewMesh("sky", g, m)
	n.FrustumCulled = false
	return &skyPass{material: m, geometry: g, node: n}
}

func (p *skyPass) render(r *Renderer, sky *scene.Sky, camera *scene.Camera) {
	if sky == nil {
		return
	}
	u := p.material.Shader.Uniforms
	u["zenith"] = sky.Zenith
	u["horizon"] = sky.Horizon
	u["ground"] = sky.Ground
	r.renderObject(p.node, camera, nil, p.geometry, p.material, nil)
}

func (p *skyPass) release(r *Renderer) {
	r.releaseMaterial(p.material)
	r.ReleaseGeometry(p.geometry)
}
