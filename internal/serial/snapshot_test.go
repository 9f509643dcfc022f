package serial

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/gometacall/gometacall/internal/reflect"
)

// TestJSONCodecSnapshotsWireFormat pins the exact JSON produced for a
// representative tree of scalar, array and map values, so a change to
// key ordering, number formatting, or map-path escaping shows up as a
// reviewable diff instead of a passing-but-silently-different encoding.
func TestJSONCodecSnapshotsWireFormat(t *testing.T) {
	c := NewJSONCodec()

	doc := reflect.ValueMap([]reflect.MapEntry{
		{Key: reflect.ValueString("name"), Value: reflect.ValueString("metacall")},
		{Key: reflect.ValueString("count"), Value: reflect.ValueLong(3)},
		{Key: reflect.ValueString("ratio"), Value: reflect.ValueDouble(1.5)},
		{Key: reflect.ValueString("tags"), Value: reflect.ValueArray([]*reflect.Value{
			reflect.ValueString("a"),
			reflect.ValueString("b"),
		})},
		{Key: reflect.ValueString("active"), Value: reflect.ValueBool(true)},
		{Key: reflect.ValueString("nothing"), Value: reflect.ValueNull()},
	})

	data, err := c.Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	snaps.MatchSnapshot(t, string(data))
}

func TestJSONCodecSnapshotsScalarEncodings(t *testing.T) {
	c := NewJSONCodec()
	for _, v := range []*reflect.Value{
		reflect.ValueLong(42),
		reflect.ValueDouble(3.14159),
		reflect.ValueString("hello \"world\""),
		reflect.ValueBool(false),
		reflect.ValueNull(),
	} {
		data, err := c.Serialize(v)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", v.ID(), err)
		}
		snaps.MatchSnapshot(t, string(data))
	}
}
