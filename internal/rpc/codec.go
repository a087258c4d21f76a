package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec carries the plain Go messages of this package over Connect. It
// takes the place of Connect's protobuf JSON codec, which only accepts
// generated messages.
type jsonCodec struct{}

// Codec returns the codec handlers are served with. Clients must use it too.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
