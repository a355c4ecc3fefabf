package formats

// Chunk tags of the Discreet 3DS binary format. A chunk is a 16-bit tag
// followed by a 32-bit total size (header included) and a payload that may
// itself contain nested chunks. Only the tags the parser interprets are
// listed; everything else is skipped via the declared size.
const (
	// top-level containers
	chunkVersion   uint16 = 0x0002
	chunkMain      uint16 = 0x4D4D
	chunkEditor    uint16 = 0x3D3D
	chunkKeyframer uint16 = 0xB000

	// editor-level chunks
	chunkMasterScale  uint16 = 0x0100
	chunkBitmap       uint16 = 0x1100
	chunkBitmapExists uint16 = 0x1101
	chunkAmbColor     uint16 = 0x2100
	chunkObjBlock     uint16 = 0x4000

	// mesh chunks
	chunkTriMesh    uint16 = 0x4100
	chunkVertList   uint16 = 0x4110
	chunkFaceList   uint16 = 0x4120
	chunkFaceMat    uint16 = 0x4130
	chunkMapList    uint16 = 0x4140
	chunkSmoothList uint16 = 0x4150
	chunkTrMatrix   uint16 = 0x4160

	// material chunks
	chunkMatMaterial     uint16 = 0xAFFF
	chunkMatName         uint16 = 0xA000
	chunkMatAmbient      uint16 = 0xA010
	chunkMatDiffuse      uint16 = 0xA020
	chunkMatSpecular     uint16 = 0xA030
	chunkMatShininess    uint16 = 0xA040
	chunkMatShininessPct uint16 = 0xA041
	chunkMatTransparency uint16 = 0xA050
	chunkMatSelfIllum    uint16 = 0xA080
	chunkMatTwoSide      uint16 = 0xA081
	chunkMatSelfIlPct    uint16 = 0xA084
	chunkMatShading      uint16 = 0xA100

	// texture slot chunks
	chunkMatTexMap   uint16 = 0xA200
	chunkMatSpecMap  uint16 = 0xA204
	chunkMatOpacMap  uint16 = 0xA210
	chunkMatBumpMap  uint16 = 0xA230
	chunkMatShinMap  uint16 = 0xA33C
	chunkMatSelfIMap uint16 = 0xA33D

	// texture slot sub-chunks
	chunkMapFile    uint16 = 0xA300
	chunkMapTiling  uint16 = 0xA351
	chunkMapUScale  uint16 = 0xA354
	chunkMapVScale  uint16 = 0xA356
	chunkMapUOffset uint16 = 0xA358
	chunkMapVOffset uint16 = 0xA35A
	chunkMapAngle   uint16 = 0xA35C

	// shared value chunks
	chunkRGBF     uint16 = 0x0010
	chunkRGBB     uint16 = 0x0011
	chunkLinRGBB  uint16 = 0x0012
	chunkLinRGBF  uint16 = 0x0013
	chunkPercentW uint16 = 0x0030
	chunkPercentF uint16 = 0x0031

	// keyframer chunks
	chunkTrackInfo    uint16 = 0xB002
	chunkTrackObjName uint16 = 0xB010
	chunkTrackPivot   uint16 = 0xB013
	chunkTrackPos     uint16 = 0xB020
	chunkTrackRotate  uint16 = 0xB021
	chunkTrackScale   uint16 = 0xB022
)
