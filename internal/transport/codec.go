package transport

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered with grpc-go's encoding registry and selected via
// grpc.ForceServerCodec / grpc.ForceCodec (see SPEC_FULL.md §4: "Wire codec
// note"). Real protobuf-reflection message types are not hand-rolled here;
// request/response types are plain Go structs and this codec stands in for
// the generated protobuf marshaler. Every other gRPC-go mechanism
// (interceptor chains, keepalive, retry, deadlines, circuit breaking) is
// unaffected — only the wire encoding differs.
const CodecName = "json"

// jsonCodec implements encoding.Codec (formerly encoding.CodecV2 in newer
// grpc-go releases expose a byte-buffer based variant; this repo targets the
// stable Codec interface) by marshaling messages as JSON instead of
// protobuf wire format.
type jsonCodec struct{}

// Marshal implements encoding.Codec.
func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal: %w", err)
	}

	return b, nil
}

// Unmarshal implements encoding.Codec.
func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal: %w", err)
	}

	return nil
}

// Name implements encoding.Codec.
func (jsonCodec) Name() string {
	return CodecName
}

// init registers the codec globally so grpc.ForceServerCodec/ForceCodec can
// select it by name.
func init() {
	encoding.RegisterCodec(jsonCodec{})
}
