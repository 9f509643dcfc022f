package serial

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/reflect"
)

// JSONCodec is the "rapidjson-equivalent" codec the specification's serial
// component calls for. Rather than a reflect-based marshaller
// (encoding/json), it is built on tidwall/gjson (read path) and
// tidwall/sjson (write path) — a streaming, mutate-in-place tree pair that
// is the idiomatic Go stand-in for a DOM-style JSON library.
type JSONCodec struct{}

// NewJSONCodec creates a JSONCodec. It carries no state.
func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Initialize() error { return nil }
func (c *JSONCodec) Destroy() error    { return nil }

// Serialize renders v as JSON text.
func (c *JSONCodec) Serialize(v *reflect.Value) ([]byte, error) {
	return marshalValue(v)
}

// Deserialize parses JSON text into a Value tree. Numbers with a
// fractional part or exponent become Double; integral numbers become Long.
// JSON objects become Map (with String-typed keys); JSON arrays become
// Array.
func (c *JSONCodec) Deserialize(data []byte) (*reflect.Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperr.New(apperr.TypeMismatch, "serial: invalid json document")
	}
	return unmarshalResult(gjson.ParseBytes(data))
}

func marshalValue(v *reflect.Value) ([]byte, error) {
	switch v.ID() {
	case reflect.Null:
		return []byte("null"), nil

	case reflect.Bool:
		if v.Bool() {
			return []byte("true"), nil
		}
		return []byte("false"), nil

	case reflect.Char:
		return []byte(strconv.FormatInt(int64(v.Char()), 10)), nil
	case reflect.Short:
		return []byte(strconv.FormatInt(int64(v.Short()), 10)), nil
	case reflect.Int:
		return []byte(strconv.FormatInt(int64(v.Int()), 10)), nil
	case reflect.Long:
		return []byte(strconv.FormatInt(v.Long(), 10)), nil

	case reflect.Float:
		return []byte(strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)), nil
	case reflect.Double:
		return []byte(strconv.FormatFloat(v.Double(), 'g', -1, 64)), nil

	case reflect.String:
		return quoteJSONString(v.String())

	case reflect.Buffer:
		return quoteJSONString(base64.StdEncoding.EncodeToString(v.Buffer()))

	case reflect.Array:
		doc := []byte("[]")
		var err error
		for i, child := range v.Array() {
			raw, merr := marshalValue(child)
			if merr != nil {
				return nil, merr
			}
			doc, err = sjson.SetRawBytes(doc, strconv.Itoa(i), raw)
			if err != nil {
				return nil, apperr.Wrap(apperr.BackEndError, "serial: encoding array element", err)
			}
		}
		return doc, nil

	case reflect.Map:
		doc := []byte("{}")
		var err error
		for _, entry := range v.Map() {
			key := stringifyKey(entry.Key)
			raw, merr := marshalValue(entry.Value)
			if merr != nil {
				return nil, merr
			}
			doc, err = sjson.SetRawBytes(doc, sjsonEscapePath(key), raw)
			if err != nil {
				return nil, apperr.Wrap(apperr.BackEndError, "serial: encoding map entry", err)
			}
		}
		return doc, nil

	default:
		return nil, apperr.New(apperr.TypeMismatch, "serial: json codec cannot serialize %s", v.ID())
	}
}

// quoteJSONString lets sjson do the string-escaping work (it already has
// to implement this to set string values) instead of reimplementing a
// JSON string quoter by hand.
func quoteJSONString(s string) ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{}`), "v", s)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackEndError, "serial: encoding string", err)
	}
	return []byte(gjson.GetBytes(doc, "v").Raw), nil
}

// sjsonEscapePath escapes path metacharacters (. * ? :) sjson would
// otherwise interpret as path syntax, since map keys are opaque strings,
// not path expressions.
func sjsonEscapePath(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, ":", `\:`)
	return replacer.Replace(key)
}

func stringifyKey(k *reflect.Value) string {
	if k.IsString() {
		return k.String()
	}
	return k.Stringify()
}

func unmarshalResult(r gjson.Result) (*reflect.Value, error) {
	switch r.Type {
	case gjson.Null:
		return reflect.ValueNull(), nil
	case gjson.True:
		return reflect.ValueBool(true), nil
	case gjson.False:
		return reflect.ValueBool(false), nil
	case gjson.Number:
		return numberValue(r), nil
	case gjson.String:
		return reflect.ValueString(r.String()), nil
	case gjson.JSON:
		if r.IsArray() {
			return unmarshalArray(r)
		}
		return unmarshalObject(r)
	default:
		return nil, apperr.New(apperr.BackEndError, "serial: unrecognized json node type")
	}
}

func numberValue(r gjson.Result) *reflect.Value {
	if strings.ContainsAny(r.Raw, ".eE") {
		return reflect.ValueDouble(r.Float())
	}
	f := r.Float()
	if f == math.Trunc(f) {
		return reflect.ValueLong(int64(f))
	}
	return reflect.ValueDouble(f)
}

func unmarshalArray(r gjson.Result) (*reflect.Value, error) {
	var elems []*reflect.Value
	var firstErr error
	r.ForEach(func(_, val gjson.Result) bool {
		child, err := unmarshalResult(val)
		if err != nil {
			firstErr = err
			return false
		}
		elems = append(elems, child)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return reflect.ValueArray(elems), nil
}

func unmarshalObject(r gjson.Result) (*reflect.Value, error) {
	var entries []reflect.MapEntry
	var firstErr error
	r.ForEach(func(key, val gjson.Result) bool {
		child, err := unmarshalResult(val)
		if err != nil {
			firstErr = err
			return false
		}
		entries = append(entries, reflect.MapEntry{Key: reflect.ValueString(key.String()), Value: child})
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return reflect.ValueMap(entries), nil
}
