package serial

import (
	"testing"

	"github.com/gometacall/gometacall/internal/reflect"
)

func roundTripNative(t *testing.T, v *reflect.Value) *reflect.Value {
	t.Helper()
	c := NewNativeCodec()
	data, err := c.Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := c.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return out
}

func TestNativeCodecRoundTripScalars(t *testing.T) {
	tests := []struct {
		name string
		v    *reflect.Value
	}{
		{"null", reflect.ValueNull()},
		{"bool", reflect.ValueBool(true)},
		{"char", reflect.ValueChar(-12)},
		{"short", reflect.ValueShort(-4000)},
		{"int", reflect.ValueInt(123456)},
		{"long", reflect.ValueLong(-9000000000)},
		{"float", reflect.ValueFloat(1.5)},
		{"double", reflect.ValueDouble(-3.25)},
		{"string", reflect.ValueString("native round trip")},
		{"buffer", reflect.ValueBuffer([]byte{0x00, 0xff, 0x10})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := roundTripNative(t, tt.v)
			if out.ID() != tt.v.ID() {
				t.Fatalf("round trip changed type: got %s, want %s", out.ID(), tt.v.ID())
			}
		})
	}
}

func TestNativeCodecRoundTripArray(t *testing.T) {
	in := reflect.ValueArray([]*reflect.Value{
		reflect.ValueLong(1),
		reflect.ValueString("two"),
		reflect.ValueBool(true),
	})
	out := roundTripNative(t, in)
	if !out.IsArray() {
		t.Fatalf("expected an array back")
	}
	elems := out.Array()
	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3", len(elems))
	}
	if elems[0].Long() != 1 || elems[1].String() != "two" || elems[2].Bool() != true {
		t.Fatalf("array round trip produced wrong elements: %v", elems)
	}
}

func TestNativeCodecRoundTripMap(t *testing.T) {
	in := reflect.ValueMap([]reflect.MapEntry{
		{Key: reflect.ValueString("a"), Value: reflect.ValueLong(1)},
		{Key: reflect.ValueString("b"), Value: reflect.ValueLong(2)},
	})
	out := roundTripNative(t, in)
	if !out.IsMap() {
		t.Fatalf("expected a map back")
	}
	entries := out.Map()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Key.String() != "a" || entries[0].Value.Long() != 1 {
		t.Fatalf("first entry round tripped wrong: %+v", entries[0])
	}
}

func TestNativeCodecDeserializeTruncatedDocumentErrors(t *testing.T) {
	c := NewNativeCodec()
	data, err := c.Serialize(reflect.ValueString("abcdef"))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := c.Deserialize(data[:len(data)-2]); err == nil {
		t.Fatalf("expected an error deserializing a truncated document")
	}
}

func TestNativeCodecDeserializeTrailingBytesErrors(t *testing.T) {
	c := NewNativeCodec()
	data, err := c.Serialize(reflect.ValueLong(7))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := c.Deserialize(append(data, 0xff)); err == nil {
		t.Fatalf("expected an error for trailing bytes after a native document")
	}
}

func TestNativeCodecUnknownTagErrors(t *testing.T) {
	c := NewNativeCodec()
	if _, err := c.Deserialize([]byte{0xaa}); err == nil {
		t.Fatalf("expected an error for an unrecognized tag byte")
	}
}
