package packer

import (
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMessage msgpack-encodes v.
func EncodeMessage(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeMessage decodes msgpack data into v, which must be a pointer.
func DecodeMessage(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
