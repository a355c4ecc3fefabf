// Package formats provides parsers for legacy 3D interchange file formats.
package formats

// Note: TDS (Discreet 3DS) document types and the chunk driver are in tds.go
// Note: shared color and percentage value chunks are handled in tds_color.go
// Note: TDS material and texture chunks are handled in tds_material.go
// Note: TDS mesh chunks are handled in tds_mesh.go
// Note: TDS keyframer and node hierarchy chunks are handled in tds_keyframe.go
