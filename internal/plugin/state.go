package plugin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cbegin/groovebox/internal/param"
)

// EncodeStateBlob serializes every parameter in s as a portable
// sequence of (param_id_length: u32 LE, param_id: bytes,
// value: f32 LE) tuples.
func EncodeStateBlob(s *param.Set) []byte {
	params := s.All()
	buf := make([]byte, 0, len(params)*16)
	var scratch [4]byte
	for _, p := range params {
		id := p.ID()
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(id)))
		buf = append(buf, scratch[:]...)
		buf = append(buf, id...)
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(float32(p.Get())))
		buf = append(buf, scratch[:]...)
	}
	return buf
}

// DecodeStateBlob parses a blob produced by EncodeStateBlob and
// applies each value through Set (which clamps to the parameter's
// range). Unknown param ids are skipped. A truncated or malformed blob
// returns an error without applying a partial result.
func DecodeStateBlob(data []byte, s *param.Set) error {
	values := make(map[string]float64)
	offset := 0
	for offset < len(data) {
		if offset+4 > len(data) {
			return fmt.Errorf("plugin: state blob truncated reading id length at offset %d", offset)
		}
		idLen := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if idLen < 0 || offset+idLen > len(data) {
			return fmt.Errorf("plugin: state blob truncated reading id at offset %d", offset)
		}
		id := string(data[offset : offset+idLen])
		offset += idLen
		if offset+4 > len(data) {
			return fmt.Errorf("plugin: state blob truncated reading value at offset %d", offset)
		}
		value := math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		values[id] = float64(value)
	}
	for id, v := range values {
		if p, ok := s.ByID(id); ok {
			p.Set(v)
		}
	}
	return nil
}
