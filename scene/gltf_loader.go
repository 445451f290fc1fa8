package scene

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/internal/logger"
	"glscene/materials"
	"glscene/textures"
)

// GLTFResult holds the nodes and resources loaded from a .glb / .gltf file.
type GLTFResult struct {
	Roots      []*Node // top-level nodes; add each with Scene.Add
	Textures   []*textures.Texture
	Materials  []*materials.Material
	Geometries []*Geometry
}

// LoadGLTF opens a .glb or .gltf file and returns a scene graph of
// KindStandard materials. External images are read through cache when it is
// not nil so repeated loads share textures.
func LoadGLTF(path string, cache *textures.Manager) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	log := logger.Log.With(zap.String("gltf", path))
	result := &GLTFResult{}

	// ── 1. Textures ──
	texCache := make([]*textures.Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		var tex *textures.Texture
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err == nil {
				tex, err = decodeImageBytes(name, raw)
			}
			if err != nil {
				log.Warn("image skipped", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err == nil {
				tex, err = decodeImageBytes(name, raw)
			}
			if err != nil {
				log.Warn("image skipped", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
		case img.URI != "":
			load := textures.Load
			if cache != nil {
				load = cache.Load
			}
			tex, err = load(filepath.Join(dir, img.URI))
			if err != nil {
				log.Warn("image skipped", zap.String("uri", img.URI), zap.Error(err))
				continue
			}
		}

		if tex != nil {
			tex.WrapS, tex.WrapT = textures.Repeat, textures.Repeat
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}
	texture := func(idx int) *textures.Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	// ── 2. Materials ──
	matCache := make([]*materials.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := materials.NewStandard(core.ColorWhite, 1, 1)
		mat.Name = gm.Name

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Color = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: 1,
			}
			mat.Opacity = float32(cf[3])
			if pbr.BaseColorTexture != nil {
				if t := texture(pbr.BaseColorTexture.Index); t != nil {
					t.Encoding = textures.SRGBEncoding
					mat.Map = t
				}
			}
			mat.Standard.Roughness = float32(pbr.RoughnessFactorOrDefault())
			mat.Standard.Metalness = float32(pbr.MetallicFactorOrDefault())
			if pbr.MetallicRoughnessTexture != nil {
				// G = roughness, B = metalness; both shaders sample their channel.
				t := texture(pbr.MetallicRoughnessTexture.Index)
				mat.Standard.RoughnessMap = t
				mat.Standard.MetalnessMap = t
			}
		}

		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			mat.NormalMap = texture(*gm.NormalTexture.Index)
		}
		if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
			mat.AOMap = texture(*gm.OcclusionTexture.Index)
		}
		if gm.EmissiveTexture != nil {
			if t := texture(gm.EmissiveTexture.Index); t != nil {
				t.Encoding = textures.SRGBEncoding
				mat.EmissiveMap = t
			}
		}
		ef := gm.EmissiveFactor
		mat.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}

		switch gm.AlphaMode {
		case gltf.AlphaBlend:
			mat.Transparent = true
			mat.DepthWrite = false
		case gltf.AlphaMask:
			mat.AlphaTest = float32(gm.AlphaCutoffOrDefault())
		}
		if gm.DoubleSided {
			mat.Side = materials.DoubleSide
		}
		matCache[i] = mat
		result.Materials = append(result.Materials, mat)
	}

	// ── 3. Mesh primitives ──
	type primitive struct {
		geometry *Geometry
		material *materials.Material
		mode     gltf.PrimitiveMode
	}
	meshPrims := make([][]primitive, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			g, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				log.Warn("primitive skipped", zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			p := primitive{geometry: g, mode: prim.Mode}
			if prim.Material != nil && *prim.Material < len(matCache) {
				p.material = matCache[*prim.Material]
			} else {
				p.material = materials.NewStandard(core.ColorWhite, 0, 1)
			}
			if _, ok := prim.Attributes["COLOR_0"]; ok {
				p.material = p.material.Clone()
				p.material.VertexColors = materials.VertexColorsOn
			}
			meshPrims[mi] = append(meshPrims[mi], p)
			result.Geometries = append(result.Geometries, g)
		}
	}

	// ── 4. Nodes ──
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

		sc := gn.ScaleOrDefault()
		n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

		r := gn.RotationOrDefault() // [x, y, z, w]
		n.SetRotation(mgl32.Quat{
			W: float32(r[3]),
			V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		})

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			if len(prims) == 1 {
				setPrimitive(n, prims[0].geometry, prims[0].material, prims[0].mode)
			} else {
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					setPrimitive(child, p.geometry, p.material, p.mode)
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	// Wire up parent-child relationships
	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) && nodes[childIdx] != nil {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	// ── 5. Root nodes ──
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) && nodes[rootIdx] != nil {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		for _, n := range nodes {
			if n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	log.Info("gltf loaded",
		zap.Int("roots", len(result.Roots)),
		zap.Int("geometries", len(result.Geometries)),
		zap.Int("materials", len(result.Materials)),
		zap.Int("textures", len(result.Textures)))
	return result, nil
}

// setPrimitive turns a group node into the drawable kind of the primitive.
func setPrimitive(n *Node, g *Geometry, m *materials.Material, mode gltf.PrimitiveMode) {
	n.Geometry, n.Material = g, m
	n.Kind = KindMesh
	switch mode {
	case gltf.PrimitivePoints:
		n.Kind = KindPoints
	case gltf.PrimitiveLines:
		n.Kind = KindLineSegments
	case gltf.PrimitiveLineStrip:
		n.Kind = KindLine
	case gltf.PrimitiveLineLoop:
		n.Kind = KindLineLoop
	case gltf.PrimitiveTriangleStrip:
		n.DrawMode = DrawTriangleStrip
	case gltf.PrimitiveTriangleFan:
		n.DrawMode = DrawTriangleFan
	}
	if n.Kind != KindMesh {
		lm := materials.New(materials.KindLineBasic)
		if n.Kind == KindPoints {
			lm = materials.New(materials.KindPoints)
		}
		lm.Color, lm.VertexColors = m.Color, m.VertexColors
		n.Material = lm
	}
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Geometry.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Geometry, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	g := NewGeometry(name)
	g.SetAttribute("position", NewAttribute(flatten3(positions), 3))

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		g.SetAttribute("normal", NewAttribute(flatten3(normals), 3))
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		flat := make([]float32, 0, 2*len(uvs))
		for _, uv := range uvs {
			// glTF puts the UV origin top-left
			flat = append(flat, uv[0], 1-uv[1])
		}
		g.SetAttribute("uv", NewAttribute(flat, 2))
	}
	if idx, ok := prim.Attributes["COLOR_0"]; ok {
		colors, err := modeler.ReadColor(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
		flat := make([]float32, 0, 3*len(colors))
		for _, c := range colors {
			flat = append(flat, float32(c[0])/255, float32(c[1])/255, float32(c[2])/255)
		}
		g.SetAttribute("color", NewAttribute(flat, 3))
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		g.SetIndex(indices)
	}

	g.ComputeBoundingSphere()
	return g, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, 3*len(v))
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func decodeImageBytes(name string, data []byte) (*textures.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	pixels, w, h := textures.Decode(img)
	return textures.New(name, w, h, pixels), nil
}
