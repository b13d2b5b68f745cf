package chunkstore

import "strconv"

// Chunk is the persisted record for one 16x16 column of a dimension. Only
// the fields the core needs to move through the store are modeled here;
// section/biome/heightmap/block-entity/structure payloads are carried as
// opaque encoded blobs rather than decoded field-by-field, since the store
// never interprets chunk contents — it only round-trips them.
type Chunk struct {
	XPos, ZPos, YPos int32

	// Sections holds one opaque blob per vertical section (block states +
	// biome palette, already encoded by whatever produced the chunk).
	Sections [][]byte

	// Heightmaps maps a heightmap name (e.g. "WORLD_SURFACE") to its packed
	// long array.
	Heightmaps map[string][]int64

	// BlockEntities and Structures are carried as opaque encoded blobs the
	// core does not need to parse: BlockEntities as a plain list, Structures
	// keyed by a caller-meaningful identifier (e.g. structure name).
	BlockEntities [][]byte
	Structures    map[string][]byte
}

// Key returns the record key chunkstore uses for (x, z) within a dimension's
// bucket: the decimal pair "x,z".
func Key(x, z int32) string {
	return strconv.FormatInt(int64(x), 10) + "," + strconv.FormatInt(int64(z), 10)
}

// BucketName returns the bucket name for a dimension: "chunks/<dimension>".
func BucketName(dimension string) []byte {
	return []byte("chunks/" + dimension)
}
