package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// PayloadHashLen is the hex length used for placeholder payload hashes
// (64 bits). It doubles as the HTTP ETag of a preview.
const PayloadHashLen = 16

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen. hexLen <= 0 returns all 16 characters.
func ContentHash(data []byte, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(data))
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

// Equal reports whether data hashes to the given (possibly truncated) hex hash.
func Equal(data []byte, hash string) bool {
	return hash != "" && ContentHash(data, len(hash)) == hash
}
