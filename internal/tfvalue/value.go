// Package tfvalue implements the tagged value representation used to hold
// heterogeneous IaC metadata (strings, lists, maps, sentinels) described in
// the design notes as "dynamic typing -> tagged records". It is backed by
// zclconf/go-cty so conversions between scalar kinds reuse a mature
// implementation instead of a hand-rolled coercion table.
package tfvalue

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Kind tags the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindBool
	KindList
	KindMap
	KindSentinel
)

// Sentinel names used throughout the pipeline. "UNKNOWN" stands for an
// unresolved data-source value; any "ERROR!..." string marks a poisoned
// expression per the evaluator's failure discipline.
const (
	SentinelUnknown = "UNKNOWN"
	SentinelErrorPrefix = "ERROR!"
)

// Value is the tagged union carried through metadata maps and expression
// evaluation.
type Value struct {
	kind Kind
	str  string
	i    int64
	b    bool
	list []Value
	m    map[string]Value
}

func Null() Value                 { return Value{kind: KindNull} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func List(vs []Value) Value       { return Value{kind: KindList, list: vs} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }
func Sentinel(s string) Value     { return Value{kind: KindSentinel, str: s} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsSentinel() bool { return v.kind == KindSentinel }
func (v Value) IsError() bool {
	return v.kind == KindSentinel && strings.HasPrefix(v.str, SentinelErrorPrefix)
}
func (v Value) IsUnknown() bool { return v.kind == KindSentinel && v.str == SentinelUnknown }

// ErrorOf builds the "ERROR!_<fn>(<arg>)" sentinel used by the function
// evaluator for calls it cannot resolve.
func ErrorOf(fn, arg string) Value {
	return Sentinel(fmt.Sprintf("%s_%s(%s)", SentinelErrorPrefix, fn, arg))
}

// AsString renders the value the way the substitution pass quotes and
// splices values back into expression text.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString, KindSentinel:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Quoted()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+v.m[k].Quoted())
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

// Quoted renders the value quoted unless it is already a list/object,
// matching the substitution discipline in the evaluator spec.
func (v Value) Quoted() string {
	switch v.kind {
	case KindList, KindMap:
		return v.AsString()
	case KindString:
		return `"` + v.str + `"`
	default:
		return v.AsString()
	}
}

func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v Value) Map() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// ToCty converts into a cty.Value for use with convert-based coercions
// (e.g. the function table's list/map builtins).
func (v Value) ToCty() cty.Value {
	switch v.kind {
	case KindNull:
		return cty.NullVal(cty.DynamicPseudoType)
	case KindString, KindSentinel:
		return cty.StringVal(v.str)
	case KindInt:
		return cty.NumberIntVal(v.i)
	case KindBool:
		return cty.BoolVal(v.b)
	case KindList:
		if len(v.list) == 0 {
			return cty.ListValEmpty(cty.DynamicPseudoType)
		}
		vals := make([]cty.Value, len(v.list))
		for i, e := range v.list {
			vals[i] = e.ToCty()
		}
		return cty.TupleVal(vals)
	case KindMap:
		vals := make(map[string]cty.Value, len(v.m))
		for k, e := range v.m {
			vals[k] = e.ToCty()
		}
		return cty.ObjectVal(vals)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// FromCty converts a cty.Value back into a Value, used when a library
// function (convert.Convert) produces a cty result that must re-enter the
// tagged representation.
func FromCty(cv cty.Value) Value {
	if cv.IsNull() {
		return Null()
	}
	if !cv.IsKnown() {
		return Sentinel(SentinelUnknown)
	}
	t := cv.Type()
	switch {
	case t == cty.String:
		return String(cv.AsString())
	case t == cty.Bool:
		return Bool(cv.True())
	case t == cty.Number:
		f, _ := cv.AsBigFloat().Int64()
		return Int(f)
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var out []Value
		for it := cv.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, FromCty(ev))
		}
		return List(out)
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]Value)
		for it := cv.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			out[kv.AsString()] = FromCty(ev)
		}
		return Map(out)
	}
	return Sentinel(SentinelUnknown)
}

// MarshalJSON renders a Value as the plain JSON shape a consumer would
// expect from the equivalent planner/metadata field: null, a string, a
// number, a bool, an array, or an object. Sentinels marshal as their
// marker string so "UNKNOWN"/"ERROR!..." values stay visible in emitted
// output rather than being silently dropped.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString, KindSentinel:
		return json.Marshal(v.str)
	case KindInt:
		return json.Marshal(v.i)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.m)
	}
	return []byte("null"), nil
}

// UnmarshalJSON reconstructs a Value from the plain JSON shapes
// MarshalJSON produces, used when replaying a previously emitted graph.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromJSONAny(raw)
	return nil
}

func fromJSONAny(raw interface{}) Value {
	switch val := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Int(int64(val))
	case []interface{}:
		out := make([]Value, len(val))
		for i, e := range val {
			out[i] = fromJSONAny(e)
		}
		return List(out)
	case map[string]interface{}:
		out := make(map[string]Value, len(val))
		for k, e := range val {
			out[k] = fromJSONAny(e)
		}
		return Map(out)
	}
	return Null()
}

// CoerceToList uses cty/convert to normalize a value that may be a scalar,
// tuple or set into a uniform []Value, the shape most builtin functions
// (concat, flatten, distinct) expect.
func CoerceToList(v Value) []Value {
	if l, ok := v.List(); ok {
		return l
	}
	cv := v.ToCty()
	listTy := cty.List(cty.DynamicPseudoType)
	converted, err := convert.Convert(cv, listTy)
	if err != nil {
		return []Value{v}
	}
	return FromCty(converted).list
}
