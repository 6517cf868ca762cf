// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/tree"
	"github.com/Masterminds/semver/v3"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrVersion is returned when loading a document whose glTF version
// is not supported.
var ErrVersion = errors.New("assets: unsupported glTF version")

// supportedVersions are the glTF versions that can be loaded.
var supportedVersions = errors.Must1(semver.NewConstraint("^2.0"))

// extrasKey is the key of the simenv data in glTF node extras.
const extrasKey = "simenv"

// nodeExtras is the simenv data stored in the extras of a glTF node.
type nodeExtras struct {
	Kind     string          `json:"kind,omitempty"`
	Camera   *cameraExtras   `json:"camera,omitempty"`
	Light    *lightExtras    `json:"light,omitempty"`
	Physics  json.RawMessage `json:"physics,omitempty"`
	Collider *Collider       `json:"collider,omitempty"`
	RL       json.RawMessage `json:"rl,omitempty"`
	Color    *[3]float32     `json:"color,omitempty"`
}

type cameraExtras struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type lightExtras struct {
	Intensity      float32    `json:"intensity"`
	Color          [3]float32 `json:"color"`
	Range          float32    `json:"range,omitempty"`
	InnerConeAngle float32    `json:"inner_cone_angle,omitempty"`
	OuterConeAngle float32    `json:"outer_cone_angle,omitempty"`
}

// kinds maps the kind names stored in documents to asset constructors.
var kinds = map[string]func() Asset{}

func registerKind[T Asset]() {
	var zero T
	kinds[tree.TypeName(zero)] = func() Asset {
		return tree.NewOfType(zero).(T)
	}
}

func init() {
	registerKind[*AssetBase]()
	registerKind[*Object]()
	registerKind[*Box]()
	registerKind[*Plane]()
	registerKind[*Sphere]()
	registerKind[*Capsule]()
	registerKind[*Camera]()
	registerKind[*LightSun]()
	registerKind[*LightPoint]()
	registerKind[*LightSpot]()
	registerKind[*Agent]()
}

////////  Encoding

// encoder builds a glTF document from an asset tree.
type encoder struct {
	doc       *gltf.Document
	root      Asset
	materials map[*Material]int
}

// NewDocument returns a glTF document with the children of the given
// asset as its top-level nodes. Node references held by reinforcement
// learning components are stored as paths from the asset.
func NewDocument(a Asset) (*gltf.Document, error) {
	e := &encoder{doc: gltf.NewDocument(), root: a, materials: map[*Material]int{}}
	e.doc.Asset.Generator = "simenv"
	sc := e.doc.Scenes[0]
	sc.Name = a.AsTree().Name
	for _, k := range a.AsAsset().Assets() {
		idx, err := e.node(k)
		if err != nil {
			return nil, err
		}
		sc.Nodes = append(sc.Nodes, idx)
	}
	if len(e.doc.Buffers) == 1 && e.doc.Buffers[0].ByteLength == 0 {
		e.doc.Buffers = nil
	}
	return e.doc, nil
}

func (e *encoder) node(a Asset) (int, error) {
	ab := a.AsAsset()
	nd := &gltf.Node{
		Name:        ab.Name,
		Translation: ab.Transform.Translation.Array(),
		Rotation:    ab.Transform.Rotation.Array(),
		Scale:       ab.Transform.Scale.Array(),
		Matrix:      gltf.DefaultMatrix,
	}
	idx := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, nd)

	ex := &nodeExtras{Kind: tree.TypeName(a), Collider: ab.Collider}
	if o, ok := a.(objecter); ok {
		if mi, ok := e.mesh(o.AsObject()); ok {
			nd.Mesh = gltf.Index(mi)
		}
	}
	switch a := a.(type) {
	case *Camera:
		nd.Camera = gltf.Index(e.camera(a))
		ex.Camera = &cameraExtras{Width: a.Width, Height: a.Height}
	case Light:
		ex.Light = lightToExtras(a)
	case *Agent:
		ex.Color = &a.Color
	}
	if ab.Physics != nil {
		raw, err := encodePhysics(ab.Physics)
		if err != nil {
			return 0, fmt.Errorf("%s: physics: %w", ab.Path(), err)
		}
		ex.Physics = raw
	}
	if ab.RL != nil {
		raw, err := ab.RL.Encode(e.root)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", ab.Path(), err)
		}
		ex.RL = raw
	}
	nd.Extras = map[string]any{extrasKey: ex}

	for _, k := range ab.Assets() {
		ci, err := e.node(k)
		if err != nil {
			return 0, err
		}
		nd.Children = append(nd.Children, ci)
	}
	return idx, nil
}

func (e *encoder) mesh(o *Object) (int, bool) {
	ms := o.Mesh
	if ms == nil || len(ms.Points) == 0 {
		return 0, false
	}
	pos := make([][3]float32, len(ms.Points))
	for i, p := range ms.Points {
		pos[i] = [3]float32{p.X, p.Y, p.Z}
	}
	attrs := map[string]int{"POSITION": modeler.WritePosition(e.doc, pos)}
	if len(ms.Normals) == len(ms.Points) {
		norms := make([][3]float32, len(ms.Normals))
		for i, n := range ms.Normals {
			norms[i] = [3]float32{n.X, n.Y, n.Z}
		}
		attrs["NORMAL"] = modeler.WriteNormal(e.doc, norms)
	}
	indices := make([]uint32, 0, 3*len(ms.Faces))
	for _, f := range ms.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	prim := &gltf.Primitive{Attributes: attrs, Indices: gltf.Index(modeler.WriteIndices(e.doc, indices))}
	if o.Material != nil {
		prim.Material = gltf.Index(e.material(o.Material))
	}
	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{Name: o.Name, Primitives: []*gltf.Primitive{prim}})
	return len(e.doc.Meshes) - 1, true
}

// material returns the index of the material, adding it on first use,
// so objects sharing a material share one document material.
func (e *encoder) material(m *Material) int {
	if mi, ok := e.materials[m]; ok {
		return mi
	}
	bc := [4]float64{float64(m.BaseColor[0]), float64(m.BaseColor[1]), float64(m.BaseColor[2]), float64(m.BaseColor[3])}
	metallic, roughness := float64(m.Metallic), float64(m.Roughness)
	e.doc.Materials = append(e.doc.Materials, &gltf.Material{
		Name:        m.Name,
		DoubleSided: m.DoubleSided,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &bc,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	mi := len(e.doc.Materials) - 1
	e.materials[m] = mi
	return mi
}

func (e *encoder) camera(c *Camera) int {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	p := &gltf.Perspective{Yfov: float64(math32.DegToRad(c.YFov)), Znear: float64(c.ZNear), AspectRatio: &aspect}
	if c.ZFar > 0 {
		zfar := float64(c.ZFar)
		p.Zfar = &zfar
	}
	e.doc.Cameras = append(e.doc.Cameras, &gltf.Camera{Name: c.Name, Perspective: p})
	return len(e.doc.Cameras) - 1
}

func lightToExtras(l Light) *lightExtras {
	lb := l.AsLightBase()
	le := &lightExtras{Intensity: lb.Intensity, Color: lb.Color}
	switch l := l.(type) {
	case *LightPoint:
		le.Range = l.Range
	case *LightSpot:
		le.Range = l.Range
		le.InnerConeAngle = l.InnerConeAngle
		le.OuterConeAngle = l.OuterConeAngle
	}
	return le
}

// Encode writes the asset as a glTF document in the given format,
// with the children of the asset as the top-level nodes.
func Encode(a Asset, w io.Writer, format Formats) error {
	doc, err := NewDocument(a)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = format == FormatGLB
	if !enc.AsBinary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	return enc.Encode(doc)
}

// EncodeBinary returns the asset as a binary glTF document.
func EncodeBinary(a Asset) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(a, &buf, FormatGLB); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save saves the asset to the given file, as binary glTF for a .glb
// extension and as glTF with embedded buffers for .gltf.
func Save(a Asset, path string) error {
	format, err := FormatFromExt(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(a, f, format); err != nil {
		f.Close()
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return f.Close()
}

// Save saves the asset to the given file; see [Save].
func (a *AssetBase) Save(path string) error {
	return Save(a.This.(Asset), path)
}

////////  Decoding

// decoder builds asset trees from a glTF document.
type decoder struct {
	doc       *gltf.Document
	materials map[int]*Material
	visiting  map[int]bool
	rls       []pendingRL
}

// pendingRL is a reinforcement learning component to decode once all
// nodes exist, since it can refer to any node of the document.
type pendingRL struct {
	asset *AssetBase
	data  json.RawMessage
}

// AddDocument adds the top-level nodes of the default scene of the
// given document as children of the given asset.
func AddDocument(a Asset, doc *gltf.Document) error {
	if err := checkVersion(doc.Asset); err != nil {
		return err
	}
	d := &decoder{doc: doc, materials: map[int]*Material{}, visiting: map[int]bool{}}
	ab := a.AsAsset()
	for _, ni := range rootNodes(doc) {
		k, err := d.node(ni)
		if err != nil {
			return err
		}
		if err := ab.AddChild(k); err != nil {
			return err
		}
	}
	for _, p := range d.rls {
		c, err := rl.Decode(p.data, a)
		if err != nil {
			return fmt.Errorf("%s: %w", p.asset.Path(), err)
		}
		p.asset.RL = c
	}
	return nil
}

// checkVersion returns [ErrVersion] if the document requires a glTF
// version other than 2.x. An empty version is accepted.
func checkVersion(as gltf.Asset) error {
	for _, vs := range []string{as.MinVersion, as.Version} {
		if vs == "" {
			continue
		}
		v, err := semver.NewVersion(vs)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrVersion, vs, err)
		}
		if !supportedVersions.Check(v) {
			return fmt.Errorf("%w: %s", ErrVersion, vs)
		}
	}
	return nil
}

// rootNodes returns the top-level nodes of the default scene, or of
// the whole document if it has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			si = *doc.Scene
		}
		return doc.Scenes[si].Nodes
	}
	child := map[int]bool{}
	for _, nd := range doc.Nodes {
		for _, c := range nd.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (d *decoder) node(ni int) (Asset, error) {
	if ni < 0 || ni >= len(d.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", ni)
	}
	if d.visiting[ni] {
		return nil, fmt.Errorf("node %d: %w", ni, tree.ErrCycle)
	}
	d.visiting[ni] = true
	defer delete(d.visiting, ni)

	nd := d.doc.Nodes[ni]
	ex, err := readExtras(nd)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	a, err := d.newAsset(nd, ex)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	ab := a.AsAsset()
	ab.Name = nd.Name
	if m := nd.MatrixOrDefault(); m != gltf.DefaultMatrix {
		ab.Transform.SetMatrix(math32.Matrix4FromArray(m))
	} else {
		ab.Transform.Translation = math32.Vector3FromArray(nd.TranslationOrDefault())
		ab.Transform.Rotation = math32.QuatFromArray(nd.RotationOrDefault())
		ab.Transform.Scale = math32.Vector3FromArray(nd.ScaleOrDefault())
	}
	if err := d.setContent(a, nd, ex); err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	for _, ci := range nd.Children {
		k, err := d.node(ci)
		if err != nil {
			return nil, err
		}
		if err := ab.AddChild(k); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func readExtras(nd *gltf.Node) (*nodeExtras, error) {
	ex := &nodeExtras{}
	if nd.Extras == nil {
		return ex, nil
	}
	b, err := json.Marshal(nd.Extras)
	if err != nil {
		return nil, err
	}
	var wrap map[string]json.RawMessage
	if json.Unmarshal(b, &wrap) != nil || wrap[extrasKey] == nil {
		return ex, nil
	}
	if err := json.Unmarshal(wrap[extrasKey], ex); err != nil {
		return nil, fmt.Errorf("extras: %w", err)
	}
	return ex, nil
}

// newAsset returns a new asset of the kind named in the extras, or
// else of the kind implied by the node content.
func (d *decoder) newAsset(nd *gltf.Node, ex *nodeExtras) (Asset, error) {
	var a Asset
	switch {
	case ex.Kind != "":
		nf, ok := kinds[ex.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown asset kind %q", ex.Kind)
		}
		a = nf()
	case nd.Camera != nil:
		a = &Camera{}
	case nd.Mesh != nil:
		a = &Object{}
	default:
		a = &AssetBase{}
	}
	tree.InitNode(a)
	return a, nil
}

func (d *decoder) setContent(a Asset, nd *gltf.Node, ex *nodeExtras) error {
	ab := a.AsAsset()
	if o, ok := a.(objecter); ok && nd.Mesh != nil {
		if err := d.mesh(o.AsObject(), *nd.Mesh); err != nil {
			return err
		}
		setFromMesh(a)
	}
	switch a := a.(type) {
	case *Camera:
		if nd.Camera != nil && *nd.Camera < len(d.doc.Cameras) {
			if p := d.doc.Cameras[*nd.Camera].Perspective; p != nil {
				a.YFov = math32.RadToDeg(float32(p.Yfov))
				a.ZNear = float32(p.Znear)
				a.ZFar = 0
				if p.Zfar != nil {
					a.ZFar = float32(*p.Zfar)
				}
			}
		}
		if ex.Camera != nil {
			a.Width, a.Height = ex.Camera.Width, ex.Camera.Height
		}
	case Light:
		if le := ex.Light; le != nil {
			lb := a.AsLightBase()
			lb.Intensity, lb.Color = le.Intensity, le.Color
			switch l := a.(type) {
			case *LightPoint:
				l.Range = le.Range
			case *LightSpot:
				l.Range, l.InnerConeAngle, l.OuterConeAngle = le.Range, le.InnerConeAngle, le.OuterConeAngle
			}
		}
	case *Agent:
		if ex.Color != nil {
			a.Color = *ex.Color
		}
	}
	ab.Collider = ex.Collider
	if len(ex.Physics) > 0 {
		p, err := decodePhysics(ex.Physics)
		if err != nil {
			return err
		}
		ab.Physics = p
	}
	if len(ex.RL) > 0 {
		d.rls = append(d.rls, pendingRL{asset: ab, data: ex.RL})
	}
	return nil
}

// mesh reads the triangle primitives of the given mesh into the object,
// merging them into one mesh that uses the material of the first.
func (d *decoder) mesh(o *Object, mi int) error {
	if mi < 0 || mi >= len(d.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", mi)
	}
	ms := &Mesh{}
	for _, prim := range d.doc.Meshes[mi].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		pi, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		pacc, err := d.accessor(pi)
		if err != nil {
			return err
		}
		pos, err := modeler.ReadPosition(d.doc, pacc, nil)
		if err != nil {
			return fmt.Errorf("reading positions: %w", err)
		}
		base := uint32(len(ms.Points))
		for _, p := range pos {
			ms.Points = append(ms.Points, math32.Vec3(p[0], p[1], p[2]))
		}
		if ni, ok := prim.Attributes["NORMAL"]; ok {
			nacc, err := d.accessor(ni)
			if err != nil {
				return err
			}
			norms, err := modeler.ReadNormal(d.doc, nacc, nil)
			if err != nil {
				return fmt.Errorf("reading normals: %w", err)
			}
			for _, n := range norms {
				ms.Normals = append(ms.Normals, math32.Vec3(n[0], n[1], n[2]))
			}
		}
		var indices []uint32
		if prim.Indices != nil {
			iacc, err := d.accessor(*prim.Indices)
			if err != nil {
				return err
			}
			indices, err = modeler.ReadIndices(d.doc, iacc, nil)
			if err != nil {
				return fmt.Errorf("reading indices: %w", err)
			}
		} else {
			for i := range pos {
				indices = append(indices, uint32(i))
			}
		}
		for _, ix := range indices {
			if int(ix) >= len(pos) {
				return fmt.Errorf("vertex index %d out of range", ix)
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			ms.Faces = append(ms.Faces, [3]uint32{base + indices[i], base + indices[i+1], base + indices[i+2]})
		}
		if o.Material == nil && prim.Material != nil {
			o.Material = d.material(*prim.Material)
		}
	}
	if len(ms.Normals) != len(ms.Points) {
		ms.Normals = nil
	}
	o.Mesh = ms
	if o.Material == nil {
		o.Material = DefaultMaterial
	}
	return nil
}

// material returns the material with the given index, creating it on
// first use so that objects sharing a document material share one [Material].
// accessor returns the accessor with the given index, checking that it
// and the buffer data it refers to exist.
func (d *decoder) accessor(ai int) (*gltf.Accessor, error) {
	if ai < 0 || ai >= len(d.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", ai)
	}
	acr := d.doc.Accessors[ai]
	if acr == nil {
		return nil, fmt.Errorf("accessor %d is missing", ai)
	}
	if acr.BufferView == nil {
		return acr, nil
	}
	bvi := *acr.BufferView
	if bvi < 0 || bvi >= len(d.doc.BufferViews) || d.doc.BufferViews[bvi] == nil {
		return nil, fmt.Errorf("accessor %d: buffer view index %d out of range", ai, bvi)
	}
	bi := d.doc.BufferViews[bvi].Buffer
	if bi < 0 || bi >= len(d.doc.Buffers) || d.doc.Buffers[bi] == nil {
		return nil, fmt.Errorf("accessor %d: buffer index %d out of range", ai, bi)
	}
	return acr, nil
}

func (d *decoder) material(mi int) *Material {
	if m, ok := d.materials[mi]; ok {
		return m
	}
	if mi < 0 || mi >= len(d.doc.Materials) {
		return DefaultMaterial
	}
	gm := d.doc.Materials[mi]
	m := &Material{Name: gm.Name, BaseColor: [4]float32{1, 1, 1, 1}, Metallic: 1, Roughness: 1, DoubleSided: gm.DoubleSided}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if bc := pbr.BaseColorFactor; bc != nil {
			m.BaseColor = [4]float32{float32(bc[0]), float32(bc[1]), float32(bc[2]), float32(bc[3])}
		}
		if pbr.MetallicFactor != nil {
			m.Metallic = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			m.Roughness = float32(*pbr.RoughnessFactor)
		}
	}
	d.materials[mi] = m
	return m
}

// Decode reads a glTF document in either format from the given reader
// and adds its top-level nodes as children of the given asset.
// Buffers must be embedded.
func Decode(a Asset, r io.Reader) error {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return err
	}
	return AddDocument(a, doc)
}

// Load loads the glTF document at the given path and adds its
// top-level nodes as children of the asset.
func (a *AssetBase) Load(path string) error {
	if _, err := DetectFileFormat(path); err != nil {
		return err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if err := AddDocument(a.This.(Asset), doc); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load returns a new [Scene] with the contents of the glTF document at
// the given path.
func Load(path string) (*Scene, error) {
	sc := NewScene()
	if err := sc.Load(path); err != nil {
		return nil, err
	}
	return sc, nil
}

// LoadAsset returns a new plain asset with the contents of the glTF
// document at the given path.
func LoadAsset(path string) (*AssetBase, error) {
	a := NewAsset()
	if err := a.Load(path); err != nil {
		return nil, err
	}
	return a, nil
}
