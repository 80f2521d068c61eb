package codec

import (
	cbor "github.com/fxamacker/cbor/v2"
)

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var cborModes = func() cborCodec {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{enc: em, dec: dm}
}()

// CBOR returns a canonical CBOR codec (RFC 8949 core deterministic encoding).
func CBOR() Codec { return cborModes }

func (c cborCodec) Name() string                       { return "cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
