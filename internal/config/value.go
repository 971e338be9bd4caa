// Package config implements the configuration store (spec.md §6.1,
// §6.5): a dotted-key/value map with a closed, tagged-variant value
// type, tiered YAML persistence, and change-notification fan-out.
package config

import (
	"fmt"
	"time"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/fixed"
)

// Kind identifies which field of a Value is populated. Values are a
// closed sum type rather than an any/interface{} bag (REDESIGN FLAGS),
// so every consumer can switch exhaustively over Kind.
type Kind int

const (
	KindString Kind = iota
	KindStringMap
	KindPath
	KindPathArray
	KindCodeDefinition
	KindBool
	KindInt
	KindFixed
	KindReal
	KindRoll
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindStringMap:
		return "StringMap"
	case KindPath:
		return "Path"
	case KindPathArray:
		return "PathArray"
	case KindCodeDefinition:
		return "CodeDefinition"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFixed:
		return "Fixed"
	case KindReal:
		return "Real"
	case KindRoll:
		return "Roll"
	case KindTime:
		return "Time"
	default:
		return "Unknown"
	}
}

// Value is one entry's typed payload. Exactly the field matching Kind
// is meaningful; the rest are zero.
type Value struct {
	kind Kind

	str        string
	strMap     map[string]string
	path       string
	pathArray  []string
	codeDef    string // code-definition name, resolved via codedef.Lookup
	boolean    bool
	integer    int64
	fixedPoint fixed.Q
	real       float64
	roll       int32
	millis     int64
}

func (v Value) Kind() Kind { return v.kind }

func StringValue(s string) Value            { return Value{kind: KindString, str: s} }
func StringMapValue(m map[string]string) Value {
	return Value{kind: KindStringMap, strMap: m}
}
func PathValue(p string) Value              { return Value{kind: KindPath, path: p} }
func PathArrayValue(p []string) Value       { return Value{kind: KindPathArray, pathArray: p} }
func CodeDefinitionValue(name string) Value { return Value{kind: KindCodeDefinition, codeDef: name} }
func BoolValue(b bool) Value                { return Value{kind: KindBool, boolean: b} }
func IntValue(i int64) Value                { return Value{kind: KindInt, integer: i} }
func FixedValue(f fixed.Q) Value            { return Value{kind: KindFixed, fixedPoint: f} }
func RealValue(r float64) Value             { return Value{kind: KindReal, real: r} }
func RollValue(r int32) Value               { return Value{kind: KindRoll, roll: r} }
func TimeValue(d time.Duration) Value       { return Value{kind: KindTime, millis: d.Milliseconds()} }

// AsString returns the string payload, or ok=false if Kind isn't String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsStringMap() (map[string]string, bool) {
	if v.kind != KindStringMap {
		return nil, false
	}
	return v.strMap, true
}

func (v Value) AsPath() (string, bool) {
	if v.kind != KindPath {
		return "", false
	}
	return v.path, true
}

func (v Value) AsPathArray() ([]string, bool) {
	if v.kind != KindPathArray {
		return nil, false
	}
	return v.pathArray, true
}

// AsCodeDefinition resolves the stored name through codedef.Lookup.
func (v Value) AsCodeDefinition() (codedef.Definition, bool) {
	if v.kind != KindCodeDefinition {
		return nil, false
	}
	return codedef.Lookup(v.codeDef)
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.integer, true
}

func (v Value) AsFixed() (fixed.Q, bool) {
	if v.kind != KindFixed {
		return 0, false
	}
	return v.fixedPoint, true
}

func (v Value) AsReal() (float64, bool) {
	if v.kind != KindReal {
		return 0, false
	}
	return v.real, true
}

func (v Value) AsRoll() (int32, bool) {
	if v.kind != KindRoll {
		return 0, false
	}
	return v.roll, true
}

func (v Value) AsTime() (time.Duration, bool) {
	if v.kind != KindTime {
		return 0, false
	}
	return time.Duration(v.millis) * time.Millisecond, true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindStringMap:
		return fmt.Sprintf("%v", v.strMap)
	case KindPath:
		return v.path
	case KindPathArray:
		return fmt.Sprintf("%v", v.pathArray)
	case KindCodeDefinition:
		return v.codeDef
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	case KindInt:
		return fmt.Sprintf("%d", v.integer)
	case KindFixed:
		return v.fixedPoint.String()
	case KindReal:
		return fmt.Sprintf("%g", v.real)
	case KindRoll:
		return fmt.Sprintf("%d", v.roll)
	case KindTime:
		return (time.Duration(v.millis) * time.Millisecond).String()
	default:
		return "<unknown>"
	}
}
