package feed

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the feed speaks.
const CodecName = "json"

// jsonCodec carries feed frames as plain JSON. The upstream contract
// predates this service and is JSON-framed, so the stream keeps that wire
// form instead of introducing a generated schema; tolerance for arbitrary
// wire text lives in Frame decoding so the normalizer, not the transport,
// decides what malformed payloads mean.
type jsonCodec struct{}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if frame, ok := v.(*Frame); ok {
		frame.decode(data)
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
