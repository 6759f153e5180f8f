package msgstore

import (
	"encoding/binary"
	"hash/crc32"
)

// Record encoding: updated_be8 | text | crc32c(updated|text)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeRecord(updated int64, text string) []byte {
	out := make([]byte, 8, 8+len(text)+4)
	binary.BigEndian.PutUint64(out, uint64(updated))
	out = append(out, text...)

	crc := crc32.Checksum(out, castagnoli)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	return append(out, crcb[:]...)
}

func decodeRecord(b []byte) (updated int64, text string, ok bool) {
	if len(b) < 8+4 {
		return 0, "", false
	}
	body := b[:len(b)-4]
	if crc32.Checksum(body, castagnoli) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return 0, "", false
	}
	return int64(binary.BigEndian.Uint64(body[:8])), string(body[8:]), true
}
