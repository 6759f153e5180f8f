package msgstore

import "encoding/binary"

// Keyspace for the Pebble backend (byte-wise sortable):
// - msg/m              last assigned id (be8)
// - msg/e/{id_be8}     record

var (
	metaKey     = []byte("msg/m")
	entryPrefix = []byte("msg/e/")
)

func entryKey(id int64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(k, b[:]...)
}

func idFromKey(k []byte) (int64, bool) {
	if len(k) != len(entryPrefix)+8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(k[len(entryPrefix):])), true
}
