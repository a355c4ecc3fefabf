package formats

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// materialDoc wraps material sub-chunks in a minimal main/editor/material
// envelope.
func materialDoc(sub ...[]byte) []byte {
	return tdsChunkBytes(chunkMain,
		tdsChunkBytes(chunkEditor,
			tdsChunkBytes(chunkMatMaterial, sub...),
		),
	)
}

func parseMaterial(t *testing.T, sub ...[]byte) *TDSMaterial {
	t.Helper()
	doc, err := ParseTDS(materialDoc(sub...))
	if err != nil {
		t.Fatalf("ParseTDS failed: %v", err)
	}
	if len(doc.Materials) != 1 {
		t.Fatalf("material count = %d, want 1", len(doc.Materials))
	}
	return &doc.Materials[0]
}

func TestParseTDS_MaterialName(t *testing.T) {
	mat := parseMaterial(t, tdsChunkBytes(chunkMatName, asciizBytes("Brick")))
	if mat.Name != "Brick" {
		t.Errorf("Name = %q, want %q", mat.Name, "Brick")
	}
}

func TestParseTDS_MaterialColorByte(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatDiffuse,
			tdsChunkBytes(chunkRGBB, []byte{255, 128, 0}),
		),
	)

	want := TDSColor{R: 1.0, G: float32(128) / 255.0, B: 0.0}
	if mat.Diffuse != want {
		t.Errorf("Diffuse = %+v, want %+v", mat.Diffuse, want)
	}
}

func TestParseTDS_MaterialColorLinearByte(t *testing.T) {
	// the linear variant is gamma-decoded with exponent 1/2.2
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatDiffuse,
			tdsChunkBytes(chunkLinRGBB, []byte{255, 128, 0}),
		),
	)

	want := TDSColor{
		R: math32.Pow(1.0, 1.0/2.2),
		G: math32.Pow(float32(128)/255.0, 1.0/2.2),
		B: 0.0,
	}
	if mat.Diffuse != want {
		t.Errorf("Diffuse = %+v, want %+v", mat.Diffuse, want)
	}
}

func TestParseTDS_MaterialColorFloat(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatSpecular,
			tdsChunkBytes(chunkRGBF, f32Bytes(0.1), f32Bytes(0.2), f32Bytes(0.3)),
		),
	)

	want := TDSColor{R: 0.1, G: 0.2, B: 0.3}
	if mat.Specular != want {
		t.Errorf("Specular = %+v, want %+v", mat.Specular, want)
	}
}

func TestParseTDS_MaterialColorSkipsUnknownSibling(t *testing.T) {
	// an unrecognized chunk in a color slot is skipped and the next
	// sibling chunk is tried
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatAmbient,
			tdsChunkBytes(0x9999, []byte{9, 9, 9}),
			tdsChunkBytes(chunkRGBB, []byte{0, 255, 0}),
		),
	)

	want := TDSColor{R: 0, G: 1, B: 0}
	if mat.Ambient != want {
		t.Errorf("Ambient = %+v, want %+v", mat.Ambient, want)
	}
}

func TestParseTDS_MaterialColorInvalidDefaults(t *testing.T) {
	tests := []struct {
		name string
		tag  uint16
		get  func(*TDSMaterial) TDSColor
		want TDSColor
	}{
		{"diffuse white", chunkMatDiffuse, func(m *TDSMaterial) TDSColor { return m.Diffuse }, TDSColor{1, 1, 1}},
		{"specular white", chunkMatSpecular, func(m *TDSMaterial) TDSColor { return m.Specular }, TDSColor{1, 1, 1}},
		{"ambient white", chunkMatAmbient, func(m *TDSMaterial) TDSColor { return m.Ambient }, TDSColor{1, 1, 1}},
		{"emissive black", chunkMatSelfIllum, func(m *TDSMaterial) TDSColor { return m.Emissive }, TDSColor{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// empty color slot: no child chunk at all
			mat := parseMaterial(t, tdsChunkBytes(tt.tag))
			if got := tt.get(mat); got != tt.want {
				t.Errorf("color = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTDS_MaterialPercentageWord(t *testing.T) {
	// word percentage 100 gives transparency 1 - (100/65535)*65535/100 = 0
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatTransparency,
			tdsChunkBytes(chunkPercentW, u16Bytes(100)),
		),
	)

	if diff := math32.Abs(mat.Transparency); diff > 1e-4 {
		t.Errorf("Transparency = %f, want ~0", mat.Transparency)
	}
}

func TestParseTDS_MaterialTransparencyHalf(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatTransparency,
			tdsChunkBytes(chunkPercentW, u16Bytes(50)),
		),
	)

	if diff := math32.Abs(mat.Transparency - 0.5); diff > 1e-4 {
		t.Errorf("Transparency = %f, want ~0.5", mat.Transparency)
	}
}

func TestParseTDS_MaterialTransparencyInvalid(t *testing.T) {
	mat := parseMaterial(t, tdsChunkBytes(chunkMatTransparency))
	if mat.Transparency != 1.0 {
		t.Errorf("Transparency = %f, want 1.0 for invalid percentage", mat.Transparency)
	}
}

func TestParseTDS_MaterialShininess(t *testing.T) {
	// float percentage 0.5 scales to a specular exponent of 0.5*65535
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatShininess,
			tdsChunkBytes(chunkPercentF, f32Bytes(0.5)),
		),
		tdsChunkBytes(chunkMatShininessPct,
			tdsChunkBytes(chunkPercentF, f32Bytes(0.5)),
		),
	)

	if mat.SpecularExponent != 0.5*65535.0 {
		t.Errorf("SpecularExponent = %f, want %f", mat.SpecularExponent, 0.5*65535.0)
	}
	if mat.ShininessStrength != 0.5*65535.0/100.0 {
		t.Errorf("ShininessStrength = %f, want %f", mat.ShininessStrength, 0.5*65535.0/100.0)
	}
}

func TestParseTDS_MaterialPercentageWordScale(t *testing.T) {
	// 0x7FFF/0xFFFF is just below one half
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatShininess,
			tdsChunkBytes(chunkPercentW, u16Bytes(32767)),
		),
	)

	want := float32(int16(32767)) / 65535.0 * 65535.0
	if mat.SpecularExponent != want {
		t.Errorf("SpecularExponent = %f, want %f", mat.SpecularExponent, want)
	}
	if mat.SpecularExponent >= 32768 || mat.SpecularExponent < 32766 {
		t.Errorf("SpecularExponent = %f, out of expected range", mat.SpecularExponent)
	}
}

func TestParseTDS_MaterialColorTruncated(t *testing.T) {
	// a color child chunk declaring bytes past the end of input is fatal,
	// not a substituted default
	child := tdsChunkBytes(chunkRGBF, f32Bytes(1), f32Bytes(1), f32Bytes(1))
	binary.LittleEndian.PutUint32(child[2:], 10000)

	data := materialDoc(tdsChunkBytes(chunkMatDiffuse, child))
	if _, err := ParseTDS(data); !errors.Is(err, ErrTruncatedTDSData) {
		t.Errorf("err = %v, want ErrTruncatedTDSData", err)
	}
}

func TestParseTDS_MaterialPercentTruncated(t *testing.T) {
	child := tdsChunkBytes(chunkPercentW, u16Bytes(50))
	binary.LittleEndian.PutUint32(child[2:], 10000)

	data := materialDoc(tdsChunkBytes(chunkMatTransparency, child))
	if _, err := ParseTDS(data); !errors.Is(err, ErrTruncatedTDSData) {
		t.Errorf("err = %v, want ErrTruncatedTDSData", err)
	}
}

func TestParseTDS_MaterialShadingAndTwoSide(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatShading, u16Bytes(uint16(TDSShadingPhong))),
		tdsChunkBytes(chunkMatTwoSide),
	)

	if mat.Shading != TDSShadingPhong {
		t.Errorf("Shading = %v, want Phong", mat.Shading)
	}
	if !mat.TwoSided {
		t.Error("TwoSided = false, want true")
	}
}

func TestParseTDS_MaterialSelfIlluminationPercent(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatSelfIlPct,
			tdsChunkBytes(chunkPercentF, f32Bytes(0.25)),
		),
	)

	want := float32(0.25) * 65535.0 / 100.0
	if mat.TexEmissive.Blend != want {
		t.Errorf("TexEmissive.Blend = %f, want %f", mat.TexEmissive.Blend, want)
	}
}

func TestParseTDS_MaterialDefaults(t *testing.T) {
	mat := parseMaterial(t, tdsChunkBytes(chunkMatName, asciizBytes("empty")))

	if mat.Diffuse != (TDSColor{0.6, 0.6, 0.6}) {
		t.Errorf("default Diffuse = %+v", mat.Diffuse)
	}
	if mat.Transparency != 1.0 {
		t.Errorf("default Transparency = %f, want 1.0", mat.Transparency)
	}
	if mat.ShininessStrength != 1.0 {
		t.Errorf("default ShininessStrength = %f, want 1.0", mat.ShininessStrength)
	}
	if mat.Shading != TDSShadingGouraud {
		t.Errorf("default Shading = %v, want Gouraud", mat.Shading)
	}
	if mat.TexDiffuse.ScaleU != 1.0 || mat.TexDiffuse.ScaleV != 1.0 {
		t.Errorf("default texture scale = (%f, %f), want (1, 1)",
			mat.TexDiffuse.ScaleU, mat.TexDiffuse.ScaleV)
	}
}

func TestParseTDS_TextureSlot(t *testing.T) {
	mat := parseMaterial(t,
		tdsChunkBytes(chunkMatTexMap,
			tdsChunkBytes(chunkMapFile, asciizBytes("wall.jpg")),
			tdsChunkBytes(chunkPercentW, u16Bytes(75)),
			tdsChunkBytes(chunkMapUScale, f32Bytes(2)),
			tdsChunkBytes(chunkMapVScale, f32Bytes(3)),
			tdsChunkBytes(chunkMapUOffset, f32Bytes(0.25)),
			tdsChunkBytes(chunkMapVOffset, f32Bytes(0.5)),
			tdsChunkBytes(chunkMapAngle, f32Bytes(1.5)),
		),
	)

	tex := mat.TexDiffuse
	if tex.MapName != "wall.jpg" {
		t.Errorf("MapName = %q, want %q", tex.MapName, "wall.jpg")
	}
	if tex.Blend != 0.75 {
		t.Errorf("Blend = %f, want 0.75", tex.Blend)
	}
	if tex.ScaleU != 2 || tex.ScaleV != 3 {
		t.Errorf("scale = (%f, %f), want (2, 3)", tex.ScaleU, tex.ScaleV)
	}
	if tex.OffsetU != 0.25 || tex.OffsetV != 0.5 {
		t.Errorf("offset = (%f, %f), want (0.25, 0.5)", tex.OffsetU, tex.OffsetV)
	}
	if tex.Rotation != 1.5 {
		t.Errorf("Rotation = %f, want 1.5", tex.Rotation)
	}
}

func TestParseTDS_TextureSlotRouting(t *testing.T) {
	tests := []struct {
		name string
		tag  uint16
		get  func(*TDSMaterial) *TDSTexture
	}{
		{"diffuse", chunkMatTexMap, func(m *TDSMaterial) *TDSTexture { return &m.TexDiffuse }},
		{"bump", chunkMatBumpMap, func(m *TDSMaterial) *TDSTexture { return &m.TexBump }},
		{"opacity", chunkMatOpacMap, func(m *TDSMaterial) *TDSTexture { return &m.TexOpacity }},
		{"shininess", chunkMatShinMap, func(m *TDSMaterial) *TDSTexture { return &m.TexShininess }},
		{"specular", chunkMatSpecMap, func(m *TDSMaterial) *TDSTexture { return &m.TexSpecular }},
		{"emissive", chunkMatSelfIMap, func(m *TDSMaterial) *TDSTexture { return &m.TexEmissive }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := parseMaterial(t,
				tdsChunkBytes(tt.tag,
					tdsChunkBytes(chunkMapFile, asciizBytes(tt.name+".png")),
				),
			)
			if got := tt.get(mat).MapName; got != tt.name+".png" {
				t.Errorf("MapName = %q, want %q", got, tt.name+".png")
			}
		})
	}
}

func TestParseTDS_TextureZeroScaleReplaced(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	doc, err := ParseTDSWithLogger(materialDoc(
		tdsChunkBytes(chunkMatTexMap,
			tdsChunkBytes(chunkMapUScale, f32Bytes(0)),
		),
	), log)
	if err != nil {
		t.Fatalf("ParseTDS failed: %v", err)
	}

	if got := doc.Materials[0].TexDiffuse.ScaleU; got != 1.0 {
		t.Errorf("ScaleU = %f, want 1.0 substituted for zero", got)
	}
	if logs.FilterMessageSnippet("scale is zero").Len() == 0 {
		t.Error("expected a warning about the zero texture scale")
	}
}

func TestParseTDS_TextureTilingFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags uint16
		want  TDSMapMode
	}{
		{"mirror", 0x0002, TDSMapMirror},
		{"decal clamps", 0x0011, TDSMapClamp},
		{"mirror wins over decal", 0x0013, TDSMapMirror},
		{"default wrap", 0x0000, TDSMapWrap},
		{"decal bits split", 0x0010, TDSMapWrap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := parseMaterial(t,
				tdsChunkBytes(chunkMatTexMap,
					tdsChunkBytes(chunkMapTiling, u16Bytes(tt.flags)),
				),
			)
			if got := mat.TexDiffuse.MapMode; got != tt.want {
				t.Errorf("MapMode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTDS_MaterialNameTooLong(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)

	// name without terminator fills the whole chunk
	_, err := ParseTDSWithLogger(materialDoc(
		tdsChunkBytes(chunkMatName, []byte("Unterminated")),
	), log)
	if err != nil {
		t.Fatalf("ParseTDS failed: %v", err)
	}
	if logs.FilterMessageSnippet("material name").Len() == 0 {
		t.Error("expected an error about the unterminated material name")
	}
}
