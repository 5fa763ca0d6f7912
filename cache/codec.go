package cache

import "github.com/vmihailenco/msgpack/v5"

// Codec converts computed values to and from storable payload bytes. The
// format is opaque to the rest of the module; disk records hold whatever
// Encode produced and Decode is expected to reverse it.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type msgpackCodec struct{}

// NewMsgpackCodec returns the default msgpack payload codec.
func NewMsgpackCodec() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Decode(data []byte, out any) error {
	return msgpack.Unmarshal(data, out)
}
