package formats

import (
	"github.com/chewxy/math32"
)

// parsePercentageChunk reads the single child chunk of a percentage-valued
// chunk (shininess, transparency, ...). Float-percent chunks hold the raw
// value; word-percent chunks hold a signed 16-bit value scaled by 1/65535.
// valid is false when the chunk is missing, of an unknown type, or too
// short; the cursor is left past the offending chunk either way. A child
// declaring bytes past the end of input is fatal, like everywhere else.
func (p *tdsParser) parsePercentageChunk(end int) (value float32, valid bool, err error) {
	ch, ok, err := p.nextChunk(end)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	switch ch.tag {
	case chunkPercentF:
		if ch.end-p.c.pos >= 4 {
			f, rerr := p.c.readF32()
			if rerr == nil {
				p.c.seek(ch.end)
				return f, true, nil
			}
		}
	case chunkPercentW:
		if ch.end-p.c.pos >= 2 {
			w, rerr := p.c.readU16()
			if rerr == nil {
				p.c.seek(ch.end)
				return float32(int16(w)) / 65535.0, true, nil
			}
		}
	}
	p.c.seek(ch.end)
	return 0, false, nil
}

// parseColorChunk reads the child chunk of a color-valued chunk. Unknown
// child tags are skipped and the read retried against the next sibling
// until the region is exhausted. Percentage chunks are accepted as
// single-channel grey only when acceptPercent is set; some producers emit
// them in color slots. valid is false for malformed or missing colors;
// the caller substitutes a slot-specific default. A child declaring bytes
// past the end of input is fatal.
func (p *tdsParser) parseColorChunk(end int, acceptPercent bool) (col TDSColor, valid bool, err error) {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return TDSColor{}, false, err
		}
		if !ok {
			return TDSColor{}, false, nil
		}
		avail := ch.end - p.c.pos
		gamma := false

		switch ch.tag {
		case chunkLinRGBF:
			gamma = true
			fallthrough
		case chunkRGBF:
			if avail < 12 {
				return TDSColor{}, false, nil
			}
			col.R, _ = p.c.readF32()
			col.G, _ = p.c.readF32()
			col.B, _ = p.c.readF32()

		case chunkLinRGBB:
			gamma = true
			fallthrough
		case chunkRGBB:
			if avail < 3 {
				return TDSColor{}, false, nil
			}
			b, _ := p.c.readBytes(3)
			col.R = float32(b[0]) / 255.0
			col.G = float32(b[1]) / 255.0
			col.B = float32(b[2]) / 255.0

		case chunkPercentF:
			if !acceptPercent || avail < 4 {
				return TDSColor{}, false, nil
			}
			f, _ := p.c.readF32()
			col.R, col.G, col.B = f, f, f

		case chunkPercentW:
			if !acceptPercent || avail < 1 {
				return TDSColor{}, false, nil
			}
			b, _ := p.c.readByte()
			grey := float32(b) / 255.0
			col.R, col.G, col.B = grey, grey, grey

		default:
			// unknown chunk in a color slot, try the next sibling
			p.c.seek(ch.end)
			continue
		}

		p.c.seek(ch.end)
		if gamma {
			col.R = math32.Pow(col.R, 1.0/2.2)
			col.G = math32.Pow(col.G, 1.0/2.2)
			col.B = math32.Pow(col.B, 1.0/2.2)
		}
		return col, true, nil
	}
}
