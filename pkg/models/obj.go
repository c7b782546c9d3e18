package models

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file. Materials named by mtllib are read
// from files next to it; a missing library only loses the colors.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	mesh, err := DecodeOBJ(f, filepath.Base(path), func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

// OpenFunc opens a file referenced from an OBJ or MTL file by its relative
// name.
type OpenFunc func(name string) (io.ReadCloser, error)

type objParser struct {
	mesh   *Mesh
	open   OpenFunc
	pos    []math3d.Vec3
	uv     []math3d.Vec2
	verts  map[[2]int]int
	mats   map[string]int
	cur    int
	object string
	line   int
}

// DecodeOBJ parses OBJ data from r. open resolves mtllib and texture
// references and may be nil, in which case they are ignored.
//
// Supported statements are v, vt, f (any polygon, fanned into triangles,
// with v, v/vt, v//vn and v/vt/vn references, negative indices counting
// back from the end), o, g, usemtl and mtllib. Texture V is flipped so
// that 0 is the top row of the image.
func DecodeOBJ(r io.Reader, name string, open OpenFunc) (*Mesh, error) {
	p := &objParser{
		mesh:  NewMesh(name),
		open:  open,
		verts: make(map[[2]int]int),
		mats:  make(map[string]int),
		cur:   -1,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	p.mesh.CalculateBounds()
	return p.mesh, nil
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.pos = append(p.pos, math3d.V3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uv = append(p.uv, math3d.V2(v[0], 1-v[1]))
	case "f":
		return p.face(fields[1:])
	case "o", "g":
		if len(fields) > 1 {
			p.object = strings.Join(fields[1:], " ")
		}
	case "usemtl":
		if len(fields) > 1 {
			p.cur = p.material(strings.Join(fields[1:], " "))
		}
	case "mtllib":
		for _, lib := range fields[1:] {
			p.loadMTL(lib)
		}
	}
	return nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// resolve converts a 1-based or negative OBJ index into a 0-based one.
func resolve(ref string, count int) (int, error) {
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (have %d)", i, count)
}

// vertex returns the mesh vertex for a v/vt/vn reference, sharing vertices
// with identical position and texture indices.
func (p *objParser) vertex(ref string) (int, error) {
	parts := strings.Split(ref, "/")
	pi, err := resolve(parts[0], len(p.pos))
	if err != nil {
		return 0, fmt.Errorf("position: %w", err)
	}
	ti := -1
	if len(parts) > 1 && parts[1] != "" {
		ti, err = resolve(parts[1], len(p.uv))
		if err != nil {
			return 0, fmt.Errorf("texcoord: %w", err)
		}
	}

	key := [2]int{pi, ti}
	if idx, ok := p.verts[key]; ok {
		return idx, nil
	}
	v := MeshVertex{Position: p.pos[pi]}
	if ti >= 0 {
		v.UV = p.uv[ti]
	}
	idx := len(p.mesh.Vertices)
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.verts[key] = idx
	return idx, nil
}

func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face needs 3 vertices, got %d", len(refs))
	}
	idx := make([]int, len(refs))
	for i, ref := range refs {
		v, err := p.vertex(ref)
		if err != nil {
			return err
		}
		idx[i] = v
	}

	mat := p.cur
	if mat < 0 && p.object != "" {
		// Objects without usemtl still get their own part.
		mat = p.material(p.object)
	}
	for k := 1; k+1 < len(idx); k++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{V: [3]int{idx[0], idx[k], idx[k+1]}, Material: mat})
	}
	return nil
}

// material returns the index of the named material, creating a default one
// on first use.
func (p *objParser) material(name string) int {
	if i, ok := p.mats[name]; ok {
		return i
	}
	i := len(p.mesh.Materials)
	p.mesh.Materials = append(p.mesh.Materials, DefaultMaterial(name))
	p.mats[name] = i
	return i
}

// loadMTL reads Kd and map_Kd from a material library. Failures are logged;
// the referenced materials fall back to white.
func (p *objParser) loadMTL(name string) {
	if p.open == nil {
		return
	}
	rc, err := p.open(name)
	if err != nil {
		Logger().Warn("skipping material library", "file", name, "error", err)
		return
	}
	defer rc.Close()

	cur := -1
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			cur = p.material(strings.Join(fields[1:], " "))
		case "Kd":
			if cur < 0 {
				continue
			}
			if v, err := parseFloats(fields[1:], 3); err == nil {
				m := &p.mesh.Materials[cur]
				m.BaseColor[0], m.BaseColor[1], m.BaseColor[2] = v[0], v[1], v[2]
			}
		case "d":
			if cur < 0 {
				continue
			}
			if v, err := parseFloats(fields[1:], 1); err == nil {
				p.mesh.Materials[cur].BaseColor[3] = v[0]
			}
		case "map_Kd":
			if cur < 0 {
				continue
			}
			img, err := p.loadImage(fields[len(fields)-1])
			if err != nil {
				Logger().Warn("skipping texture", "material", p.mesh.Materials[cur].Name, "error", err)
				continue
			}
			p.mesh.Materials[cur].BaseMap = img
		}
	}
	if err := sc.Err(); err != nil {
		Logger().Warn("reading material library", "file", name, "error", err)
	}
}

func (p *objParser) loadImage(name string) (image.Image, error) {
	rc, err := p.open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}
