package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace is the fixed namespace under which all chunk IDs are
// derived. It must never change: the deterministic IDs it produces are the
// primary keys of the downstream search index, and a new namespace would
// orphan every previously ingested chunk.
var chunkNamespace = uuid.MustParse("a1b2c3d4-e5f6-7890-abcd-ef1234567890")

// ChunkID derives the deterministic v5 UUID for a chunk from its source
// file, section key and emission index. The same triple always yields the
// same ID, across runs and processes.
func ChunkID(sourceFile, section string, index int) string {
	key := fmt.Sprintf("%s:%s:%d", sourceFile, section, index)
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}
