// Package codec provides pluggable (de)serialization between caller value
// types and the raw bytes moved through stores and fetchers.
package codec

// Codec encodes/decodes values V to []byte. Decode is applied to both cached
// payloads and freshly fetched ones, so the remote representation and the
// stored representation are the same bytes.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
