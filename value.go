package duckbridge

import (
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ValueKind discriminates the variants of a composite Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt64
	ValueFloat64
	ValueString
	ValueList
	ValueStruct
	ValueMap
)

// Field is one named member of a struct value. Order is significant: it
// determines the member order of the engine-side struct type.
type Field struct {
	Name  string
	Value Value
}

// Value is a structured value that can be bound natively into a prepared
// statement: scalars, lists, structs and maps, nested arbitrarily. It is
// handed to the engine as a real composite value rather than smuggled
// through a JSON string, so the engine sees the genuine nested type.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int64   int64
	Float64 float64
	Str     string

	Elems  []Value // list elements
	Fields []Field // struct members
	Keys   []Value // map keys, parallel to Vals
	Vals   []Value
}

func Null() Value                  { return Value{Kind: ValueNull} }
func BoolValue(v bool) Value       { return Value{Kind: ValueBool, Bool: v} }
func Int64Value(v int64) Value     { return Value{Kind: ValueInt64, Int64: v} }
func Float64Value(v float64) Value { return Value{Kind: ValueFloat64, Float64: v} }
func StringValue(v string) Value   { return Value{Kind: ValueString, Str: v} }

func ListValue(elems ...Value) Value {
	return Value{Kind: ValueList, Elems: elems}
}

func StructValue(fields ...Field) Value {
	return Value{Kind: ValueStruct, Fields: fields}
}

func MapValue(keys, vals []Value) Value {
	return Value{Kind: ValueMap, Keys: keys, Vals: vals}
}

// logicalType builds the engine logical type describing this value. List
// element, struct member and map entry types are taken from the first
// element; empty containers default to VARCHAR payloads. The caller destroys
// the returned handle.
func (v Value) logicalType() logicalHandle {
	switch v.Kind {
	case ValueBool:
		return duckdbCreateLogicalType(uint32(TypeBoolean))
	case ValueInt64:
		return duckdbCreateLogicalType(uint32(TypeBigInt))
	case ValueFloat64:
		return duckdbCreateLogicalType(uint32(TypeDouble))
	case ValueList:
		var child logicalHandle
		if len(v.Elems) > 0 {
			child = v.Elems[0].logicalType()
		} else {
			child = duckdbCreateLogicalType(uint32(TypeVarchar))
		}
		t := duckdbCreateListType(child)
		duckdbDestroyLogicalType(&child)
		return t
	case ValueStruct:
		types := make([]logicalHandle, len(v.Fields))
		names := make([]*byte, len(v.Fields))
		for i, f := range v.Fields {
			types[i] = f.Value.logicalType()
			names[i] = cString(f.Name)
		}
		t := duckdbCreateStructType(&types[0], &names[0], uint64(len(v.Fields)))
		for i := range types {
			duckdbDestroyLogicalType(&types[i])
		}
		return t
	case ValueMap:
		var key, val logicalHandle
		if len(v.Keys) > 0 {
			key = v.Keys[0].logicalType()
			val = v.Vals[0].logicalType()
		} else {
			key = duckdbCreateLogicalType(uint32(TypeVarchar))
			val = duckdbCreateLogicalType(uint32(TypeVarchar))
		}
		t := duckdbCreateMapType(key, val)
		duckdbDestroyLogicalType(&key)
		duckdbDestroyLogicalType(&val)
		return t
	default:
		return duckdbCreateLogicalType(uint32(TypeVarchar))
	}
}

// engineValue converts the tree into an engine-owned value handle. The
// caller destroys the returned handle; intermediate handles are destroyed
// here.
func (v Value) engineValue() (valueHandle, error) {
	switch v.Kind {
	case ValueNull:
		return duckdbCreateNullValue(), nil
	case ValueBool:
		return duckdbCreateBool(v.Bool), nil
	case ValueInt64:
		return duckdbCreateInt64(v.Int64), nil
	case ValueFloat64:
		return duckdbCreateDouble(v.Float64), nil
	case ValueString:
		buf := append([]byte(v.Str), 0)
		return duckdbCreateVarcharLength(&buf[0], uint64(len(v.Str))), nil
	case ValueList:
		return v.engineList()
	case ValueStruct:
		return v.engineStruct()
	case ValueMap:
		return v.engineMap()
	}
	return 0, errors.Errorf("unknown value kind %d", v.Kind)
}

func destroyAll(handles []valueHandle) {
	for i := range handles {
		if handles[i] != 0 {
			duckdbDestroyValue(&handles[i])
		}
	}
}

func convertAll(values []Value) ([]valueHandle, error) {
	handles := make([]valueHandle, len(values))
	for i, e := range values {
		h, err := e.engineValue()
		if err != nil {
			destroyAll(handles[:i])
			return nil, err
		}
		handles[i] = h
	}
	return handles, nil
}

func (v Value) engineList() (valueHandle, error) {
	handles, err := convertAll(v.Elems)
	if err != nil {
		return 0, err
	}
	defer destroyAll(handles)

	var elemType logicalHandle
	if len(v.Elems) > 0 {
		elemType = v.Elems[0].logicalType()
	} else {
		elemType = duckdbCreateLogicalType(uint32(TypeVarchar))
	}
	defer duckdbDestroyLogicalType(&elemType)

	var first *valueHandle
	if len(handles) > 0 {
		first = &handles[0]
	}
	out := duckdbCreateListValue(elemType, first, uint64(len(handles)))
	if out == 0 {
		return 0, errAllocation("list value")
	}
	return out, nil
}

func (v Value) engineStruct() (valueHandle, error) {
	if len(v.Fields) == 0 {
		return 0, errors.New("struct value has no fields")
	}
	members := make([]Value, len(v.Fields))
	for i, f := range v.Fields {
		members[i] = f.Value
	}
	handles, err := convertAll(members)
	if err != nil {
		return 0, err
	}
	defer destroyAll(handles)

	structType := v.logicalType()
	defer duckdbDestroyLogicalType(&structType)

	out := duckdbCreateStructValue(structType, &handles[0])
	if out == 0 {
		return 0, errAllocation("struct value")
	}
	return out, nil
}

func (v Value) engineMap() (valueHandle, error) {
	if len(v.Keys) != len(v.Vals) {
		return 0, errors.New("map value has mismatched key/value counts")
	}
	keys, err := convertAll(v.Keys)
	if err != nil {
		return 0, err
	}
	defer destroyAll(keys)
	vals, err := convertAll(v.Vals)
	if err != nil {
		return 0, err
	}
	defer destroyAll(vals)

	mapType := v.logicalType()
	defer duckdbDestroyLogicalType(&mapType)

	var kp, vp *valueHandle
	if len(keys) > 0 {
		kp, vp = &keys[0], &vals[0]
	}
	out := duckdbCreateMapValue(mapType, kp, vp, uint64(len(keys)))
	if out == 0 {
		return 0, errAllocation("map value")
	}
	return out, nil
}

// Interface converts the tree into plain Go values (nil, bool, int64,
// float64, string, []any, map[string]any).
func (v Value) Interface() any {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueInt64:
		return v.Int64
	case ValueFloat64:
		return v.Float64
	case ValueString:
		return v.Str
	case ValueList:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = e.Interface()
		}
		return out
	case ValueStruct:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name] = f.Value.Interface()
		}
		return out
	case ValueMap:
		out := make(map[string]any, len(v.Keys))
		for i, k := range v.Keys {
			out[keyString(k)] = v.Vals[i].Interface()
		}
		return out
	}
	return nil
}

func keyString(k Value) string {
	if k.Kind == ValueString {
		return k.Str
	}
	b, _ := json.Marshal(k.Interface())
	return string(b)
}

// JSON renders the tree as JSON text, for logging and debugging. Binding
// goes through engineValue, never through this form.
func (v Value) JSON() ([]byte, error) {
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return nil, errors.Wrap(err, "encode value")
	}
	return b, nil
}

// ValueFromJSON parses JSON text into a Value tree. JSON objects become
// structs with fields in sorted key order; whole numbers become Int64.
func ValueFromJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, errors.Wrap(err, "decode value")
	}
	return valueFromInterface(raw), nil
}

func valueFromInterface(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return BoolValue(x)
	case float64:
		if x == float64(int64(x)) {
			return Int64Value(int64(x))
		}
		return Float64Value(x)
	case string:
		return StringValue(x)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = valueFromInterface(e)
		}
		return ListValue(elems...)
	case map[string]any:
		names := make([]string, 0, len(x))
		for name := range x {
			names = append(names, name)
		}
		sort.Strings(names)
		fields := make([]Field, len(names))
		for i, name := range names {
			fields[i] = Field{Name: name, Value: valueFromInterface(x[name])}
		}
		return StructValue(fields...)
	}
	return Null()
}
