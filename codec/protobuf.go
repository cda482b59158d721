package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto.Message values. Construct with NewProtobuf and a
// constructor for the concrete message type; Decode needs it to allocate a
// fresh message per call.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *mypb.Image { return &mypb.Image{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	v := c.new()
	if err := proto.Unmarshal(b, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
