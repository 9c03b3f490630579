package duckbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueInterface(t *testing.T) {
	v := StructValue(
		Field{Name: "id", Value: Int64Value(7)},
		Field{Name: "name", Value: StringValue("ada")},
		Field{Name: "tags", Value: ListValue(StringValue("a"), StringValue("b"))},
		Field{Name: "ratio", Value: Float64Value(0.5)},
		Field{Name: "active", Value: BoolValue(true)},
		Field{Name: "gone", Value: Null()},
	)

	assert.Equal(t, map[string]any{
		"id":     int64(7),
		"name":   "ada",
		"tags":   []any{"a", "b"},
		"ratio":  0.5,
		"active": true,
		"gone":   nil,
	}, v.Interface())
}

func TestValueJSON(t *testing.T) {
	v := ListValue(Int64Value(1), Int64Value(2), Int64Value(3))
	b, err := v.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, "[1,2,3]", string(b))

	b, err = Null().JSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestValueFromJSON(t *testing.T) {
	v, err := ValueFromJSON([]byte(`{"b":2.5,"a":1,"c":[true,null,"x"]}`))
	require.NoError(t, err)

	require.Equal(t, ValueStruct, v.Kind)
	require.Len(t, v.Fields, 3)

	// Object keys come out in sorted order.
	assert.Equal(t, "a", v.Fields[0].Name)
	assert.Equal(t, ValueInt64, v.Fields[0].Value.Kind)
	assert.Equal(t, int64(1), v.Fields[0].Value.Int64)

	assert.Equal(t, "b", v.Fields[1].Name)
	assert.Equal(t, ValueFloat64, v.Fields[1].Value.Kind)
	assert.Equal(t, 2.5, v.Fields[1].Value.Float64)

	list := v.Fields[2].Value
	require.Equal(t, ValueList, list.Kind)
	require.Len(t, list.Elems, 3)
	assert.Equal(t, ValueBool, list.Elems[0].Kind)
	assert.Equal(t, ValueNull, list.Elems[1].Kind)
	assert.Equal(t, ValueString, list.Elems[2].Kind)
}

func TestValueFromJSONWholeFloatsBecomeInt64(t *testing.T) {
	v, err := ValueFromJSON([]byte(`[3, 3.0, 3.5]`))
	require.NoError(t, err)
	assert.Equal(t, ValueInt64, v.Elems[0].Kind)
	assert.Equal(t, ValueInt64, v.Elems[1].Kind)
	assert.Equal(t, ValueFloat64, v.Elems[2].Kind)
}

func TestValueJSONRoundTrip(t *testing.T) {
	orig := StructValue(
		Field{Name: "xs", Value: ListValue(Int64Value(1), Int64Value(2))},
		Field{Name: "y", Value: StringValue("hello")},
	)
	b, err := orig.JSON()
	require.NoError(t, err)

	back, err := ValueFromJSON(b)
	require.NoError(t, err)
	assert.Equal(t, orig.Interface(), back.Interface())
}

func TestMapValueInterface(t *testing.T) {
	v := MapValue(
		[]Value{StringValue("k1"), StringValue("k2")},
		[]Value{Int64Value(10), Int64Value(20)},
	)
	assert.Equal(t, map[string]any{"k1": int64(10), "k2": int64(20)}, v.Interface())
}
