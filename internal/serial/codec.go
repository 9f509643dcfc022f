// Package serial implements the two value codecs a plugin descriptor can
// name: a JSON codec for interoperating with the outside world and a
// compact native codec for in-process persistence/transport.
package serial

import "github.com/gometacall/gometacall/internal/reflect"

// Codec is the serializer vtable named in the specification
// (Initialize/Serialize/Deserialize/Destroy).
type Codec interface {
	Initialize() error
	Serialize(v *reflect.Value) ([]byte, error)
	Deserialize(data []byte) (*reflect.Value, error)
	Destroy() error
}
