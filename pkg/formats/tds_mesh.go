package formats

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// readVec3Swapped reads three floats and swaps Y and Z, reconciling the
// file's coordinate convention with ours.
func (p *tdsParser) readVec3Swapped() (mgl32.Vec3, error) {
	x, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	y, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	z, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{x, z, y}, nil
}

func (p *tdsParser) readVec3() (mgl32.Vec3, error) {
	x, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	y, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	z, err := p.c.readF32()
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{x, y, z}, nil
}

// parseMeshChunk consumes the chunks of one triangle-mesh block into the
// most recently appended mesh.
func (p *tdsParser) parseMeshChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		mesh := &p.doc.Meshes[len(p.doc.Meshes)-1]

		switch ch.tag {
		case chunkVertList:
			n, rerr := p.c.readU16()
			if rerr != nil {
				break
			}
			for i := 0; i < int(n); i++ {
				v, verr := p.readVec3Swapped()
				if verr != nil {
					break
				}
				mesh.Positions = append(mesh.Positions, v)
			}

		case chunkTrMatrix:
			p.parseMeshMatrix(mesh)

		case chunkMapList:
			n, rerr := p.c.readU16()
			if rerr != nil {
				break
			}
			for i := 0; i < int(n); i++ {
				u, uerr := p.c.readF32()
				if uerr != nil {
					break
				}
				v, verr := p.c.readF32()
				if verr != nil {
					break
				}
				mesh.TexCoords = append(mesh.TexCoords, mgl32.Vec2{u, v})
			}

		case chunkFaceList:
			n, rerr := p.c.readU16()
			if rerr != nil {
				break
			}
			for i := 0; i < int(n); i++ {
				var face TDSFace
				var ferr error
				face.Indices[0], ferr = p.c.readU16()
				if ferr != nil {
					break
				}
				face.Indices[1], ferr = p.c.readU16()
				if ferr != nil {
					break
				}
				face.Indices[2], ferr = p.c.readU16()
				if ferr != nil {
					break
				}
				// per-face flags word, unused
				if ferr = p.c.skip(2); ferr != nil {
					break
				}
				mesh.Faces = append(mesh.Faces, face)
			}

			// one material slot per face, unassigned until a
			// face-material chunk claims the face
			mesh.FaceMaterials = make([]uint32, len(mesh.Faces))
			for i := range mesh.FaceMaterials {
				mesh.FaceMaterials[i] = TDSNoMaterial
			}

			// smoothing groups and face materials nest behind the faces
			if p.c.pos < ch.end {
				if err = p.parseFaceChunk(ch.end); err != nil {
					return err
				}
			}
		}
		p.endChunk(ch)
	}
}

// parseMeshMatrix reads the 3x4 local transform. A negative determinant
// means the mesh was authored in a left-handed local frame; already-read
// vertices are re-projected through inverse(M)*mirror(M) to correct it.
func (p *tdsParser) parseMeshMatrix(mesh *TDSMesh) {
	var f [12]float32
	for i := range f {
		v, err := p.c.readF32()
		if err != nil {
			return
		}
		f[i] = v
	}

	// column-major: three rotation columns plus the translation column
	m := mgl32.Mat4{
		f[0], f[1], f[2], 0,
		f[3], f[4], f[5], 0,
		f[6], f[7], f[8], 0,
		f[9], f[10], f[11], 1,
	}
	mesh.Transform = m

	if m.Det() >= 0 {
		return
	}

	// mirrored mesh: negate the first column and re-project
	mirror := m
	mirror[0] *= -1
	mirror[1] *= -1
	mirror[2] *= -1
	mirror[3] *= -1
	inv := m.Inv().Mul4(mirror)

	for i, v := range mesh.Positions {
		mesh.Positions[i] = mgl32.Vec3{
			inv.At(0, 0)*v.X() + inv.At(1, 0)*v.Y() + inv.At(2, 0)*v.Z() + inv.At(3, 0),
			inv.At(0, 1)*v.X() + inv.At(1, 1)*v.Y() + inv.At(2, 1)*v.Z() + inv.At(3, 1),
			inv.At(0, 2)*v.X() + inv.At(1, 2)*v.Y() + inv.At(2, 2)*v.Z() + inv.At(3, 2),
		}
	}
}

// parseFaceChunk consumes the face-attribute chunks trailing a face list:
// smoothing groups and per-face material assignments.
func (p *tdsParser) parseFaceChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		mesh := &p.doc.Meshes[len(p.doc.Meshes)-1]

		switch ch.tag {
		case chunkSmoothList:
			// one bitmask per face in face order; a short list leaves the
			// remaining faces in no smoothing group
			for i := range mesh.Faces {
				if ch.end-p.c.pos < 4 {
					break
				}
				v, rerr := p.c.readU32()
				if rerr != nil {
					break
				}
				mesh.Faces[i].SmoothGroup = v
			}

		case chunkFaceMat:
			p.parseFaceMaterials(mesh, ch.end)
		}
		p.endChunk(ch)
	}
}

// parseFaceMaterials assigns a material index to the faces listed in a
// face-material chunk. The material is matched by name, case-insensitive;
// an unknown name assigns TDSNoMaterial so a consumer can substitute a
// default later.
func (p *tdsParser) parseFaceMaterials(mesh *TDSMesh, end int) {
	name, _ := p.c.asciiz(end)

	index := TDSNoMaterial
	for i := range p.doc.Materials {
		if strings.EqualFold(p.doc.Materials[i].Name, name) {
			index = uint32(i)
			break
		}
	}

	n, err := p.c.readU16()
	if err != nil {
		return
	}
	for i := 0; i < int(n); i++ {
		face, rerr := p.c.readU16()
		if rerr != nil {
			return
		}
		if int(face) >= len(mesh.FaceMaterials) {
			p.log.Error("invalid face index in face material list",
				zap.Uint16("face", face),
				zap.Int("face_count", len(mesh.FaceMaterials)),
				zap.String("material", name))
			// historical behavior: redirect the write to the last slot
			if len(mesh.FaceMaterials) > 0 {
				mesh.FaceMaterials[len(mesh.FaceMaterials)-1] = index
			}
		} else {
			mesh.FaceMaterials[face] = index
		}
	}
}
