package formats

import (
	"go.uber.org/zap"
)

// parseMaterialChunk consumes the chunks of one material block into the
// most recently appended material.
func (p *tdsParser) parseMaterialChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		mat := &p.doc.Materials[len(p.doc.Materials)-1]

		switch ch.tag {
		case chunkMatName:
			name, terminated := p.c.asciiz(ch.end)
			if !terminated {
				p.log.Error("material name string is too long", zap.String("name", name))
			}
			mat.Name = name

		case chunkMatDiffuse:
			var col TDSColor
			var valid bool
			col, valid, err = p.parseColorChunk(ch.end, false)
			if err != nil {
				return err
			}
			if !valid {
				p.log.Error("unable to read DIFFUSE chunk")
				col = TDSColor{R: 1, G: 1, B: 1}
			}
			mat.Diffuse = col

		case chunkMatSpecular:
			var col TDSColor
			var valid bool
			col, valid, err = p.parseColorChunk(ch.end, false)
			if err != nil {
				return err
			}
			if !valid {
				p.log.Error("unable to read SPECULAR chunk")
				col = TDSColor{R: 1, G: 1, B: 1}
			}
			mat.Specular = col

		case chunkMatAmbient:
			var col TDSColor
			var valid bool
			col, valid, err = p.parseColorChunk(ch.end, false)
			if err != nil {
				return err
			}
			if !valid {
				p.log.Error("unable to read AMBIENT chunk")
				col = TDSColor{R: 1, G: 1, B: 1}
			}
			mat.Ambient = col

		case chunkMatSelfIllum:
			var col TDSColor
			var valid bool
			col, valid, err = p.parseColorChunk(ch.end, false)
			if err != nil {
				return err
			}
			if !valid {
				p.log.Error("unable to read EMISSIVE chunk")
				col = TDSColor{}
			}
			mat.Emissive = col

		case chunkMatTransparency:
			// the chunk stores opacity; the material stores transparency
			var pct float32
			var valid bool
			pct, valid, err = p.parsePercentageChunk(ch.end)
			if err != nil {
				return err
			}
			if !valid {
				mat.Transparency = 1.0
			} else {
				mat.Transparency = 1.0 - pct*65535.0/100.0
			}

		case chunkMatShading:
			if v, rerr := p.c.readU16(); rerr == nil {
				mat.Shading = TDSShading(v)
			}

		case chunkMatTwoSide:
			// presence-only flag, no payload
			mat.TwoSided = true

		case chunkMatShininess:
			var pct float32
			var valid bool
			pct, valid, err = p.parsePercentageChunk(ch.end)
			if err != nil {
				return err
			}
			if !valid {
				mat.SpecularExponent = 0
			} else {
				mat.SpecularExponent = pct * 65535.0
			}

		case chunkMatShininessPct:
			var pct float32
			var valid bool
			pct, valid, err = p.parsePercentageChunk(ch.end)
			if err != nil {
				return err
			}
			if !valid {
				mat.ShininessStrength = 0
			} else {
				mat.ShininessStrength = pct * 65535.0 / 100.0
			}

		case chunkMatSelfIlPct:
			// stored on the emissive texture slot as its blend factor
			var pct float32
			var valid bool
			pct, valid, err = p.parsePercentageChunk(ch.end)
			if err != nil {
				return err
			}
			if !valid {
				mat.TexEmissive.Blend = 0
			} else {
				mat.TexEmissive.Blend = pct * 65535.0 / 100.0
			}

		case chunkMatTexMap:
			err = p.parseTextureChunk(ch.end, &mat.TexDiffuse)
		case chunkMatBumpMap:
			err = p.parseTextureChunk(ch.end, &mat.TexBump)
		case chunkMatOpacMap:
			err = p.parseTextureChunk(ch.end, &mat.TexOpacity)
		case chunkMatShinMap:
			err = p.parseTextureChunk(ch.end, &mat.TexShininess)
		case chunkMatSpecMap:
			err = p.parseTextureChunk(ch.end, &mat.TexSpecular)
		case chunkMatSelfIMap:
			err = p.parseTextureChunk(ch.end, &mat.TexEmissive)
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
}

// parseTextureChunk consumes the chunks of one texture slot.
func (p *tdsParser) parseTextureChunk(end int, tex *TDSTexture) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkMapFile:
			name, terminated := p.c.asciiz(ch.end)
			if !terminated {
				p.log.Warn("texture map name is not terminated", zap.String("name", name))
			}
			tex.MapName = name

		// the blend factor is stored as a bare percentage chunk
		case chunkPercentF:
			if f, rerr := p.c.readF32(); rerr == nil {
				tex.Blend = f
			}
		case chunkPercentW:
			if w, rerr := p.c.readU16(); rerr == nil {
				tex.Blend = float32(int16(w)) / 100.0
			}

		case chunkMapUScale:
			if f, rerr := p.c.readF32(); rerr == nil {
				if f == 0 {
					p.log.Warn("texture U scale is zero, assuming 1.0")
					f = 1.0
				}
				tex.ScaleU = f
			}
		case chunkMapVScale:
			if f, rerr := p.c.readF32(); rerr == nil {
				if f == 0 {
					p.log.Warn("texture V scale is zero, assuming 1.0")
					f = 1.0
				}
				tex.ScaleV = f
			}
		case chunkMapUOffset:
			if f, rerr := p.c.readF32(); rerr == nil {
				tex.OffsetU = f
			}
		case chunkMapVOffset:
			if f, rerr := p.c.readF32(); rerr == nil {
				tex.OffsetV = f
			}
		case chunkMapAngle:
			if f, rerr := p.c.readF32(); rerr == nil {
				tex.Rotation = f
			}

		case chunkMapTiling:
			if flags, rerr := p.c.readU16(); rerr == nil {
				if flags&0x2 != 0 {
					tex.MapMode = TDSMapMirror
				} else if flags&0x10 != 0 && flags&0x1 != 0 {
					// "decal" is treated as clamping
					tex.MapMode = TDSMapClamp
				}
			}
		}
		p.endChunk(ch)
	}
}
