package serial

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/reflect"
)

// Native codec tag bytes. No pack dependency fits a compact length-prefixed
// binary format this specific (the closest candidates, protobuf/sonic,
// both require a schema or reflect-based struct marshalling neither of
// which applies to a dynamically-discriminated Value tree) — see
// DESIGN.md for the stdlib justification.
const (
	tagNull byte = iota
	tagBool
	tagChar
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagString
	tagBuffer
	tagArray
	tagMap
)

// NativeCodec is a compact length-prefixed tag/value binary format for
// in-process persistence or transport between two gometacall instances,
// named alongside the JSON codec in the specification's serial component.
type NativeCodec struct{}

// NewNativeCodec creates a NativeCodec. It carries no state.
func NewNativeCodec() *NativeCodec { return &NativeCodec{} }

func (c *NativeCodec) Initialize() error { return nil }
func (c *NativeCodec) Destroy() error    { return nil }

// Serialize encodes v into the native binary format.
func (c *NativeCodec) Serialize(v *reflect.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeNative(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a native-format buffer back into a Value tree.
func (c *NativeCodec) Deserialize(data []byte) (*reflect.Value, error) {
	r := bytes.NewReader(data)
	v, err := decodeNative(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, apperr.New(apperr.TypeMismatch, "serial: %d trailing bytes after native document", r.Len())
	}
	return v, nil
}

func encodeNative(buf *bytes.Buffer, v *reflect.Value) error {
	switch v.ID() {
	case reflect.Null:
		buf.WriteByte(tagNull)
	case reflect.Bool:
		buf.WriteByte(tagBool)
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case reflect.Char:
		buf.WriteByte(tagChar)
		buf.WriteByte(byte(v.Char()))
	case reflect.Short:
		buf.WriteByte(tagShort)
		writeUint(buf, uint64(uint16(v.Short())), 2)
	case reflect.Int:
		buf.WriteByte(tagInt)
		writeUint(buf, uint64(uint32(v.Int())), 4)
	case reflect.Long:
		buf.WriteByte(tagLong)
		writeUint(buf, uint64(v.Long()), 8)
	case reflect.Float:
		buf.WriteByte(tagFloat)
		writeUint(buf, uint64(math.Float32bits(v.Float())), 4)
	case reflect.Double:
		buf.WriteByte(tagDouble)
		writeUint(buf, math.Float64bits(v.Double()), 8)
	case reflect.String:
		buf.WriteByte(tagString)
		s := v.String()
		writeUint(buf, uint64(len(s)), 4)
		buf.WriteString(s)
	case reflect.Buffer:
		buf.WriteByte(tagBuffer)
		b := v.Buffer()
		writeUint(buf, uint64(len(b)), 4)
		buf.Write(b)
	case reflect.Array:
		buf.WriteByte(tagArray)
		elems := v.Array()
		writeUint(buf, uint64(len(elems)), 4)
		for _, e := range elems {
			if err := encodeNative(buf, e); err != nil {
				return err
			}
		}
	case reflect.Map:
		buf.WriteByte(tagMap)
		entries := v.Map()
		writeUint(buf, uint64(len(entries)), 4)
		for _, entry := range entries {
			if err := encodeNative(buf, entry.Key); err != nil {
				return err
			}
			if err := encodeNative(buf, entry.Value); err != nil {
				return err
			}
		}
	default:
		return apperr.New(apperr.TypeMismatch, "serial: native codec cannot serialize %s", v.ID())
	}
	return nil
}

func decodeNative(r *bytes.Reader) (*reflect.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, apperr.Wrap(apperr.TypeMismatch, "serial: truncated native document", err)
	}
	switch tag {
	case tagNull:
		return reflect.ValueNull(), nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, apperr.Wrap(apperr.TypeMismatch, "serial: truncated bool", err)
		}
		return reflect.ValueBool(b != 0), nil
	case tagChar:
		b, err := r.ReadByte()
		if err != nil {
			return nil, apperr.Wrap(apperr.TypeMismatch, "serial: truncated char", err)
		}
		return reflect.ValueChar(int8(b)), nil
	case tagShort:
		n, err := readUint(r, 2)
		if err != nil {
			return nil, err
		}
		return reflect.ValueShort(int16(n)), nil
	case tagInt:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		return reflect.ValueInt(int32(n)), nil
	case tagLong:
		n, err := readUint(r, 8)
		if err != nil {
			return nil, err
		}
		return reflect.ValueLong(int64(n)), nil
	case tagFloat:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		return reflect.ValueFloat(math.Float32frombits(uint32(n))), nil
	case tagDouble:
		n, err := readUint(r, 8)
		if err != nil {
			return nil, err
		}
		return reflect.ValueDouble(math.Float64frombits(n)), nil
	case tagString:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
		return reflect.ValueString(string(buf)), nil
	case tagBuffer:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
		return reflect.ValueBuffer(buf), nil
	case tagArray:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		elems := make([]*reflect.Value, 0, n)
		for i := uint64(0); i < n; i++ {
			child, err := decodeNative(r)
			if err != nil {
				return nil, err
			}
			elems = append(elems, child)
		}
		return reflect.ValueArray(elems), nil
	case tagMap:
		n, err := readUint(r, 4)
		if err != nil {
			return nil, err
		}
		entries := make([]reflect.MapEntry, 0, n)
		for i := uint64(0); i < n; i++ {
			key, err := decodeNative(r)
			if err != nil {
				return nil, err
			}
			val, err := decodeNative(r)
			if err != nil {
				return nil, err
			}
			entries = append(entries, reflect.MapEntry{Key: key, Value: val})
		}
		return reflect.ValueMap(entries), nil
	default:
		return nil, apperr.New(apperr.TypeMismatch, "serial: unknown native tag %d", tag)
	}
}

func writeUint(buf *bytes.Buffer, v uint64, width int) {
	b := make([]byte, width)
	switch width {
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(b, v)
	}
	buf.Write(b)
}

func readUint(r *bytes.Reader, width int) (uint64, error) {
	b := make([]byte, width)
	if _, err := readFull(r, b); err != nil {
		return 0, err
	}
	switch width {
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	case 8:
		return binary.BigEndian.Uint64(b), nil
	}
	return 0, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err != nil || n != len(buf) {
		return n, apperr.New(apperr.TypeMismatch, "serial: truncated native document")
	}
	return n, nil
}
