package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"glscene/core"
	"glscene/internal/logger"
	"glscene/materials"
	"glscene/textures"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	v, vt, vn [3]int // 0-based position / UV / normal indices (-1 = absent)
}

type objObject struct {
	name     string
	material string
	faces    []objFace
}

// LoadOBJ parses a Wavefront .obj file into one mesh node per object/group
// with KindPhong materials. A companion .mtl file is loaded when referenced
// via "mtllib"; its images go through cache when it is not nil.
func LoadOBJ(path string, cache *textures.Manager) ([]*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()
	return ParseOBJ(f, filepath.Dir(path), cache)
}

// ParseOBJ reads OBJ data from r. dir resolves mtllib and texture paths.
func ParseOBJ(r io.Reader, dir string, cache *textures.Manager) ([]*Node, error) {
	log := logger.Log.With(zap.String("obj", dir))

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	mats := map[string]*materials.Material{}

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				positions = append(positions, parseVec3(fields[1:4]))
			}
		case "vn":
			if len(fields) >= 4 {
				normals = append(normals, parseVec3(fields[1:4]))
			}
		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})
			}
		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, material: cur.material}
		case "usemtl":
			if len(fields) > 1 {
				cur.material = fields[1]
			}
		case "mtllib":
			if len(fields) > 1 {
				loaded, err := loadMTL(filepath.Join(dir, fields[1]), dir, cache)
				if err != nil {
					log.Warn("mtllib skipped", zap.String("file", fields[1]), zap.Error(err))
					continue
				}
				for k, m := range loaded {
					mats[k] = m
				}
			}
		case "f":
			if len(fields) < 4 {
				continue
			}
			verts := make([][3]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				verts = append(verts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// fan: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(verts); i++ {
				a, b, c := verts[0], verts[i], verts[i+1]
				cur.faces = append(cur.faces, objFace{
					v:  [3]int{a[0], b[0], c[0]},
					vt: [3]int{a[1], b[1], c[1]},
					vn: [3]int{a[2], b[2], c[2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, errors.New("no geometry found in obj data")
	}

	nodes := make([]*Node, 0, len(objects))
	for _, obj := range objects {
		g := buildOBJGeometry(obj.name, obj.faces, positions, normals, uvs)
		m, ok := mats[obj.material]
		if !ok {
			m = materials.NewPhong(core.ColorWhite, 30)
		}
		if m.NormalMap != nil && g.Attributes["uv"] != nil {
			ComputeTangents(g)
		}
		nodes = append(nodes, NewMesh(obj.name, g, m))
	}
	log.Info("obj loaded", zap.Int("meshes", len(nodes)), zap.Int("materials", len(mats)))
	return nodes, nil
}

func parseVec3(f []string) mgl32.Vec3 {
	x, _ := strconv.ParseFloat(f[0], 32)
	y, _ := strconv.ParseFloat(f[1], 32)
	z, _ := strconv.ParseFloat(f[2], 32)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" into 0-based
// indices, -1 when absent. Negative OBJ indices count back from the end of
// the pools read so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) [3]int {
	res := [3]int{-1, -1, -1}
	pools := [3]int{nv, nvt, nvn}
	for i, part := range strings.SplitN(tok, "/", 3) {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n == 0 {
			continue
		}
		if n > 0 {
			res[i] = n - 1
		} else {
			res[i] = pools[i] + n
		}
	}
	return res
}

// buildOBJGeometry deduplicates face vertices into indexed attribute streams.
func buildOBJGeometry(name string, faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Geometry {
	type key struct{ v, vt, vn int }
	seen := map[key]uint32{}
	var pos, nrm, uv []float32
	var indices []uint32
	hasUV := false

	for _, face := range faces {
		for c := range 3 {
			k := key{face.v[c], face.vt[c], face.vn[c]}
			if idx, ok := seen[k]; ok {
				indices = append(indices, idx)
				continue
			}
			p := mgl32.Vec3{}
			if k.v >= 0 && k.v < len(positions) {
				p = positions[k.v]
			}
			n := mgl32.Vec3{0, 1, 0}
			if k.vn >= 0 && k.vn < len(normals) {
				n = normals[k.vn]
			}
			t := mgl32.Vec2{}
			if k.vt >= 0 && k.vt < len(uvs) {
				t = uvs[k.vt]
				hasUV = true
			}
			idx := uint32(len(pos) / 3)
			pos = append(pos, p[:]...)
			nrm = append(nrm, n[:]...)
			uv = append(uv, t[:]...)
			seen[k] = idx
			indices = append(indices, idx)
		}
	}

	if len(normals) == 0 {
		computeVertexNormals(pos, nrm, indices)
	}

	g := NewGeometry(name)
	g.SetAttribute("position", NewAttribute(pos, 3))
	g.SetAttribute("normal", NewAttribute(nrm, 3))
	if hasUV {
		g.SetAttribute("uv", NewAttribute(uv, 2))
	}
	g.SetIndex(indices)
	g.ComputeBoundingSphere()
	return g
}

// computeVertexNormals overwrites nrm with area-weighted vertex normals.
func computeVertexNormals(pos, nrm []float32, indices []uint32) {
	accum := make([]mgl32.Vec3, len(pos)/3)
	at := func(i uint32) mgl32.Vec3 { return mgl32.Vec3{pos[3*i], pos[3*i+1], pos[3*i+2]} }
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := at(i0)
		n := at(i1).Sub(v0).Cross(at(i2).Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i, n := range accum {
		if n.LenSqr() > 0 {
			n = n.Normalize()
			copy(nrm[3*i:], n[:])
		}
	}
}

// ── MTL ──

func loadMTL(path, dir string, cache *textures.Manager) (map[string]*materials.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMTL(f, dir, cache), nil
}

func parseMTL(r io.Reader, dir string, cache *textures.Manager) map[string]*materials.Material {
	load := textures.Load
	if cache != nil {
		load = cache.Load
	}
	texture := func(file string) *textures.Texture {
		t, err := load(filepath.Join(dir, file))
		if err != nil {
			logger.Log.Warn("mtl texture skipped", zap.String("file", file), zap.Error(err))
			return nil
		}
		return t
	}

	mats := map[string]*materials.Material{}
	var cur *materials.Material
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = materials.NewPhong(core.ColorWhite, 30)
				cur.Name = fields[1]
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			if len(fields) >= 4 {
				c := parseVec3(fields[1:4])
				cur.Color = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ks":
			if len(fields) >= 4 {
				c := parseVec3(fields[1:4])
				cur.Phong.Specular = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ke":
			if len(fields) >= 4 {
				c := parseVec3(fields[1:4])
				cur.Emissive = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ns":
			if len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Phong.Shininess = math32.Max(1, float32(ns))
			}
		case "d":
			if len(fields) >= 2 {
				d, _ := strconv.ParseFloat(fields[1], 32)
				cur.Opacity = float32(d)
				cur.Transparent = d < 1
			}
		case "map_Kd":
			if len(fields) >= 2 {
				if t := texture(fields[len(fields)-1]); t != nil {
					t.Encoding = textures.SRGBEncoding
					cur.Map = t
				}
			}
		case "map_Bump", "bump", "norm":
			if len(fields) >= 2 {
				cur.NormalMap = texture(fields[len(fields)-1])
			}
		}
	}
	return mats
}
