package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// AttrKind enumerates the closed set of value types a descriptor attribute
// may carry. There is deliberately no "any" escape hatch: operator semantics
// depend on knowing the type of both sides.
type AttrKind uint8

const (
	KindString AttrKind = iota
	KindInt
	KindFloat
	KindBool
	KindList
)

func (k AttrKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// AttrValue is a typed attribute value: exactly one of the payload fields is
// meaningful, selected by Kind. Values are immutable once parsed.
type AttrValue struct {
	Kind  AttrKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []string
}

func StringAttr(v string) AttrValue { return AttrValue{Kind: KindString, Str: v} }
func IntAttr(v int64) AttrValue { return AttrValue{Kind: KindInt, Int: v} }
func FloatAttr(v float64) AttrValue { return AttrValue{Kind: KindFloat, Float: v} }
func BoolAttr(v bool) AttrValue { return AttrValue{Kind: KindBool, Bool: v} }
func ListAttr(v ...string) AttrValue { return AttrValue{Kind: KindList, List: v} }

// ParseAttrValue converts a decoded YAML/JSON scalar or string list into a
// typed value. Anything outside the closed type set is an error.
func ParseAttrValue(raw any) (AttrValue, error) {
	switch v := raw.(type) {
	case string:
		return StringAttr(v), nil
	case bool:
		return BoolAttr(v), nil
	case int:
		return IntAttr(int64(v)), nil
	case int64:
		return IntAttr(v), nil
	case uint64:
		return IntAttr(int64(v)), nil
	case float32:
		return FloatAttr(float64(v)), nil
	case float64:
		return FloatAttr(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntAttr(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return AttrValue{}, fmt.Errorf("invalid number %q", v.String())
		}
		return FloatAttr(f), nil
	case []any:
		list := make([]string, 0, len(v))
		for _, el := range v {
			s, ok := el.(string)
			if !ok {
				return AttrValue{}, fmt.Errorf("list attributes may only contain strings, got %T", el)
			}
			list = append(list, s)
		}
		return AttrValue{Kind: KindList, List: list}, nil
	case []string:
		return AttrValue{Kind: KindList, List: append([]string(nil), v...)}, nil
	default:
		return AttrValue{}, fmt.Errorf("unsupported attribute type %T", raw)
	}
}

// num returns the value as a float for cross-type numeric comparison.
func (v AttrValue) num() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Equal compares two values. Ints and floats compare numerically, so an
// integer attribute satisfies a float constraint with the same value.
func (v AttrValue) Equal(o AttrValue) bool {
	if a, ok := v.num(); ok {
		if b, ok := o.num(); ok {
			return a == b
		}
		return false
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values; ok is false when the pair has no ordering
// (bools, lists, mixed string/number).
func (v AttrValue) Compare(o AttrValue) (int, bool) {
	if a, aok := v.num(); aok {
		b, bok := o.num()
		if !bok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.Kind == KindString && o.Kind == KindString {
		return strings.Compare(v.Str, o.Str), true
	}
	return 0, false
}

// Contains reports membership: a list contains a string element, a string
// contains a substring. Every other combination is false.
func (v AttrValue) Contains(o AttrValue) bool {
	switch v.Kind {
	case KindList:
		if o.Kind != KindString {
			return false
		}
		for _, el := range v.List {
			if el == o.Str {
				return true
			}
		}
		return false
	case KindString:
		return o.Kind == KindString && strings.Contains(v.Str, o.Str)
	default:
		return false
	}
}

// Native returns the underlying Go value, for serialization and expression
// evaluation.
func (v AttrValue) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindList:
		return append([]string(nil), v.List...)
	default:
		return nil
	}
}

func (v AttrValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		return "[" + strings.Join(v.List, ",") + "]"
	default:
		return ""
	}
}

func (v AttrValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *AttrValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseAttrValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v AttrValue) MarshalYAML() (any, error) {
	return v.Native(), nil
}

func (v *AttrValue) UnmarshalYAML(b []byte) error {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseAttrValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
