package ordering

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Version fingerprints an ascending entry list. Two reads of a scope return
// the same version only if no entry was added, removed or moved in between.
func Version(entries []Entry) string {
	d := xxhash.New()
	var buf [8]byte
	for _, e := range entries {
		_, _ = d.Write(e.ID[:])
		binary.BigEndian.PutUint64(buf[:], uint64(int64(e.SortOrder)))
		_, _ = d.Write(buf[:])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
