// TDS (3D Studio .3ds) format parser for 3D scenes.
//
// A .3ds file is a tree of self-describing chunks: a 16-bit tag, a 32-bit
// total size and a payload of nested chunks. Chunk sizes are producer
// supplied and untrusted; the parser advances by declared size so unknown
// or malformed chunks are skipped without derailing their siblings.
package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// TDS format errors.
var (
	ErrTDSFileTooSmall  = errors.New("3DS file is too small")
	ErrTruncatedTDSData = errors.New("truncated 3DS data")
)

// TDSNoMaterial marks a face that no face-material chunk has claimed yet.
// Downstream consumers replace it with a default material.
const TDSNoMaterial uint32 = 0xcdcdcdcd

// TDSColor is a linear RGB color with 0..1 float channels.
type TDSColor struct {
	R, G, B float32
}

// TDSShading is the material shading mode as stored in the file.
type TDSShading uint16

const (
	TDSShadingWire    TDSShading = 0
	TDSShadingFlat    TDSShading = 1
	TDSShadingGouraud TDSShading = 2
	TDSShadingPhong   TDSShading = 3
	TDSShadingMetal   TDSShading = 4
)

// String returns a human-readable shading mode name.
func (s TDSShading) String() string {
	switch s {
	case TDSShadingWire:
		return "Wire"
	case TDSShadingFlat:
		return "Flat"
	case TDSShadingGouraud:
		return "Gouraud"
	case TDSShadingPhong:
		return "Phong"
	case TDSShadingMetal:
		return "Metal"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(s))
	}
}

// TDSMapMode is the texture wrap mode of a texture slot.
type TDSMapMode uint8

const (
	TDSMapWrap TDSMapMode = iota
	TDSMapMirror
	TDSMapClamp
)

// String returns a human-readable wrap mode name.
func (m TDSMapMode) String() string {
	switch m {
	case TDSMapWrap:
		return "Wrap"
	case TDSMapMirror:
		return "Mirror"
	case TDSMapClamp:
		return "Clamp"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}

// TDSTexture is one named texture slot of a material.
type TDSTexture struct {
	MapName  string     // Texture map filename
	Blend    float32    // Blend factor
	ScaleU   float32    // U tiling scale
	ScaleV   float32    // V tiling scale
	OffsetU  float32    // U offset
	OffsetV  float32    // V offset
	Rotation float32    // Rotation angle (radians)
	MapMode  TDSMapMode // Wrap mode
}

// TDSMaterial is a parsed material block.
type TDSMaterial struct {
	Name              string
	Ambient           TDSColor
	Diffuse           TDSColor
	Specular          TDSColor
	Emissive          TDSColor
	Transparency      float32
	SpecularExponent  float32
	ShininessStrength float32
	Shading           TDSShading
	TwoSided          bool

	TexDiffuse   TDSTexture
	TexBump      TDSTexture
	TexOpacity   TDSTexture
	TexShininess TDSTexture
	TexSpecular  TDSTexture
	TexEmissive  TDSTexture
}

// TDSFace is a triangle with a smoothing-group bitmask. Bit n set means the
// face belongs to smoothing group n; zero means hard edges.
type TDSFace struct {
	Indices     [3]uint16
	SmoothGroup uint32
}

// TDSMesh is one parsed object/mesh block.
type TDSMesh struct {
	Name      string
	Transform mgl32.Mat4   // Local affine transform (identity if absent)
	Positions []mgl32.Vec3 // Vertex positions (Y/Z swapped on read)
	TexCoords []mgl32.Vec2 // UVs, may be shorter than Positions or empty

	// Faces and FaceMaterials are parallel: one material index per face,
	// TDSNoMaterial until a face-material chunk claims the face.
	Faces         []TDSFace
	FaceMaterials []uint32
}

// TDSVectorKey is a position or scaling animation key.
type TDSVectorKey struct {
	Frame int
	Value mgl32.Vec3
}

// TDSQuatKey is a rotation animation key.
type TDSQuatKey struct {
	Frame int
	Value mgl32.Quat
}

// TDSNode is one node of the reconstructed hierarchy. The file stores nodes
// as a flat sequence of depth-tagged records; HierarchyPos is the shifted
// depth value of the record and HierarchyIndex the running record counter at
// the time the node was read. Both are inputs to the tree reconstruction,
// not tree depths.
type TDSNode struct {
	Name           string
	HierarchyPos   int
	HierarchyIndex int
	Pivot          mgl32.Vec3

	Parent   *TDSNode
	Children []*TDSNode

	PositionKeys []TDSVectorKey
	RotationKeys []TDSQuatKey
	ScalingKeys  []TDSVectorKey
}

func (n *TDSNode) addChild(c *TDSNode) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// HasAnimation returns true if the node carries any animation keys.
func (n *TDSNode) HasAnimation() bool {
	return len(n.PositionKeys) > 0 || len(n.RotationKeys) > 0 || len(n.ScalingKeys) > 0
}

// TDS is a parsed 3DS scene document.
type TDS struct {
	Meshes    []TDSMesh
	Materials []TDSMaterial
	Root      *TDSNode

	Ambient         TDSColor
	BackgroundImage string
	HasBackground   bool
	MasterScale     float32
}

// TotalVertexCount returns the total number of vertices across all meshes.
func (t *TDS) TotalVertexCount() int {
	total := 0
	for i := range t.Meshes {
		total += len(t.Meshes[i].Positions)
	}
	return total
}

// TotalFaceCount returns the total number of faces across all meshes.
func (t *TDS) TotalFaceCount() int {
	total := 0
	for i := range t.Meshes {
		total += len(t.Meshes[i].Faces)
	}
	return total
}

// NodeCount returns the number of nodes in the hierarchy, root excluded.
func (t *TDS) NodeCount() int {
	count := -1
	var walk func(*TDSNode)
	walk = func(n *TDSNode) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return count
}

// HasAnimation returns true if any node carries animation keys.
func (t *TDS) HasAnimation() bool {
	var walk func(*TDSNode) bool
	walk = func(n *TDSNode) bool {
		if n.HasAnimation() {
			return true
		}
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return t.Root != nil && walk(t.Root)
}

// tdsChunkHeaderSize is the size of a chunk header: u16 tag + u32 total size.
const tdsChunkHeaderSize = 6

// tdsMinFileSize is the smallest input worth attempting to decode.
const tdsMinFileSize = 16

// tdsChunk is a decoded chunk header. end is the absolute payload end,
// already clamped to the enclosing region.
type tdsChunk struct {
	tag  uint16
	size uint32
	end  int
}

// tdsParser holds the state of one decode call. A parser is used for a
// single ParseTDS invocation and never shared.
type tdsParser struct {
	c   cursor
	doc *TDS
	log *zap.Logger

	// hierarchy reconstruction state, see tds_keyframe.go
	currentNode   *TDSNode
	lastNodeIndex int
}

// ParseTDS parses 3DS data from a byte slice. Diagnostics are discarded;
// use ParseTDSWithLogger to capture them.
func ParseTDS(data []byte) (*TDS, error) {
	return ParseTDSWithLogger(data, nil)
}

// ParseTDSWithLogger parses 3DS data from a byte slice, reporting
// recoverable oddities (clamped chunk sizes, bad face indices, zero texture
// scales, ...) to log.
func ParseTDSWithLogger(data []byte, log *zap.Logger) (*TDS, error) {
	if len(data) < tdsMinFileSize {
		return nil, ErrTDSFileTooSmall
	}
	if log == nil {
		log = zap.NewNop()
	}

	root := &TDSNode{HierarchyPos: -1, HierarchyIndex: -1}
	doc := &TDS{
		Root:        root,
		MasterScale: 1.0,
	}
	p := &tdsParser{
		c:             cursor{data: data},
		doc:           doc,
		log:           log,
		currentNode:   root,
		lastNodeIndex: -1,
	}

	if err := p.parseMainChunk(len(data)); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseTDSFile parses a 3DS file from disk.
func ParseTDSFile(path string) (*TDS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading 3DS file: %w", err)
	}
	return ParseTDS(data)
}

// nextChunk decodes the chunk header at the cursor. ok is false when fewer
// than header-size bytes remain before end; the caller stops iterating the
// region. A declared size that crosses the buffer end is fatal. A declared
// size that crosses end, or is smaller than the header itself, is clamped
// to end and logged.
func (p *tdsParser) nextChunk(end int) (ch tdsChunk, ok bool, err error) {
	if end-p.c.pos < tdsChunkHeaderSize {
		return ch, false, nil
	}
	start := p.c.pos
	ch.tag, _ = p.c.readU16()
	ch.size, _ = p.c.readU32()
	ch.end = start + int(ch.size)

	if ch.end > len(p.c.data) {
		return ch, false, fmt.Errorf("%w: chunk 0x%04X declares %d bytes past end of input",
			ErrTruncatedTDSData, ch.tag, ch.end-len(p.c.data))
	}
	if ch.size < tdsChunkHeaderSize || ch.end > end {
		p.log.Warn("chunk size exceeds enclosing region, clamping",
			zap.Uint16("tag", ch.tag),
			zap.Uint32("size", ch.size),
			zap.Int("region_end", end))
		ch.end = end
	}
	return ch, true, nil
}

// endChunk advances the cursor to the chunk's declared end, regardless of
// how much the handler actually consumed. A handler that ended up past the
// declared end keeps its position so the scan never moves backwards.
func (p *tdsParser) endChunk(ch tdsChunk) {
	if p.c.pos > ch.end {
		p.log.Warn("subordinate chunks overflow the declared chunk size",
			zap.Uint16("tag", ch.tag),
			zap.Int("overflow", p.c.pos-ch.end))
		return
	}
	p.c.seek(ch.end)
}

// parseMainChunk walks the top-level chunks. Trailing bytes too short for a
// chunk header are fatal here; everywhere deeper they just end the region.
func (p *tdsParser) parseMainChunk(end int) error {
	for p.c.pos < end {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d trailing bytes are too short for a chunk header",
				ErrTruncatedTDSData, end-p.c.pos)
		}
		switch ch.tag {
		case chunkMain:
			err = p.parseEditorChunk(ch.end)
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
	return nil
}

func (p *tdsParser) parseEditorChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkEditor:
			err = p.parseObjectChunk(ch.end)

		// Some producers put the keyframer section at this level.
		case chunkKeyframer:
			err = p.parseKeyframeChunk(ch.end)

		case chunkVersion:
			if ch.end-p.c.pos >= 2 {
				v, _ := p.c.readU16()
				p.log.Info("3DS file version chunk", zap.Uint16("version", v))
			} else {
				p.log.Warn("invalid version chunk in 3DS file")
			}
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
}

func (p *tdsParser) parseObjectChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkObjBlock:
			// the object block payload starts with the object name
			name, terminated := p.c.asciiz(ch.end)
			if !terminated {
				p.log.Warn("object name string is not terminated", zap.String("name", name))
			}
			p.doc.Meshes = append(p.doc.Meshes, TDSMesh{
				Name:      name,
				Transform: mgl32.Ident4(),
			})
			err = p.parseObjectDataChunk(ch.end)

		case chunkMatMaterial:
			p.doc.Materials = append(p.doc.Materials, defaultTDSMaterial())
			err = p.parseMaterialChunk(ch.end)

		case chunkAmbColor:
			// scene ambient base color
			var col TDSColor
			var valid bool
			col, valid, err = p.parseColorChunk(ch.end, true)
			if err != nil {
				return err
			}
			if !valid {
				col = TDSColor{}
			}
			p.doc.Ambient = col

		case chunkBitmap:
			name, terminated := p.c.asciiz(ch.end)
			if !terminated {
				p.log.Warn("background image name is not terminated", zap.String("name", name))
			}
			p.doc.BackgroundImage = name

		case chunkBitmapExists:
			p.doc.HasBackground = true

		case chunkMasterScale:
			if f, rerr := p.c.readF32(); rerr == nil {
				p.doc.MasterScale = f
			}

		case chunkKeyframer:
			err = p.parseKeyframeChunk(ch.end)
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
}

// parseObjectDataChunk walks the chunks following an object name. Lights
// and cameras also live here; only triangle meshes are interpreted.
func (p *tdsParser) parseObjectDataChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkTriMesh:
			err = p.parseMeshChunk(ch.end)
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
}

func defaultTDSMaterial() TDSMaterial {
	return TDSMaterial{
		Diffuse:           TDSColor{R: 0.6, G: 0.6, B: 0.6},
		Transparency:      1.0,
		ShininessStrength: 1.0,
		Shading:           TDSShadingGouraud,
		TexDiffuse:        defaultTDSTexture(),
		TexBump:           defaultTDSTexture(),
		TexOpacity:        defaultTDSTexture(),
		TexShininess:      defaultTDSTexture(),
		TexSpecular:       defaultTDSTexture(),
		TexEmissive:       defaultTDSTexture(),
	}
}

func defaultTDSTexture() TDSTexture {
	return TDSTexture{
		Blend:  1.0,
		ScaleU: 1.0,
		ScaleV: 1.0,
	}
}
