// Package statevariables describes UPnP state variables as they appear in
// the serviceStateTable of a service description: their data type, their
// value constraints and whether they are evented.
package statevariables

import (
	"strings"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
)

// StateVarType represents the UPnP data types a state variable may declare.
type StateVarType int

const (
	StateType_Unknown    StateVarType = iota
	StateType_UI1                     // Unsigned 8-bit integer
	StateType_UI2                     // Unsigned 16-bit integer
	StateType_UI4                     // Unsigned 32-bit integer
	StateType_I1                      // Signed 8-bit integer
	StateType_I2                      // Signed 16-bit integer
	StateType_I4                      // Signed 32-bit integer
	StateType_Int                     // Synonymous with i4
	StateType_R4                      // 32-bit floating point
	StateType_R8                      // 64-bit floating point
	StateType_Number                  // Synonymous with r8
	StateType_Fixed14_4               // Fixed-point decimal
	StateType_Float                   // Non standard, seen on some devices
	StateType_Char                    // Single Unicode character
	StateType_String                  // Character string
	StateType_Bool                    // Non standard spelling of boolean
	StateType_Boolean                 // Boolean value
	StateType_BinBase64               // Base64-encoded binary
	StateType_BinHex                  // Hex-encoded binary
	StateType_Date                    // Date (YYYY-MM-DD)
	StateType_DateTime                // DateTime without timezone
	StateType_DateTimeTZ              // DateTime with timezone
	StateType_Time                    // Time without timezone
	StateType_TimeTZ                  // Time with timezone
	StateType_UUID                    // Universally unique identifier
	StateType_URI                     // Uniform Resource Identifier
)

// typeNames maps UPnP XML type names to StateVarType constants. Lookup is
// case sensitive ("dateTime" is not "datetime").
var typeNames = map[string]StateVarType{
	"ui1":         StateType_UI1,
	"ui2":         StateType_UI2,
	"ui4":         StateType_UI4,
	"i1":          StateType_I1,
	"i2":          StateType_I2,
	"i4":          StateType_I4,
	"int":         StateType_Int,
	"r4":          StateType_R4,
	"r8":          StateType_R8,
	"number":      StateType_Number,
	"fixed.14.4":  StateType_Fixed14_4,
	"float":       StateType_Float,
	"char":        StateType_Char,
	"string":      StateType_String,
	"bool":        StateType_Bool,
	"boolean":     StateType_Boolean,
	"bin.base64":  StateType_BinBase64,
	"bin.hex":     StateType_BinHex,
	"date":        StateType_Date,
	"dateTime":    StateType_DateTime,
	"dateTime.tz": StateType_DateTimeTZ,
	"time":        StateType_Time,
	"time.tz":     StateType_TimeTZ,
	"uuid":        StateType_UUID,
	"uri":         StateType_URI,
}

var typeStrings = [...]string{
	"unknown",
	"ui1",
	"ui2",
	"ui4",
	"i1",
	"i2",
	"i4",
	"int",
	"r4",
	"r8",
	"number",
	"fixed.14.4",
	"float",
	"char",
	"string",
	"bool",
	"boolean",
	"bin.base64",
	"bin.hex",
	"date",
	"dateTime",
	"dateTime.tz",
	"time",
	"time.tz",
	"uuid",
	"uri",
}

// StateVarTypeFactory returns the StateVarType named by s, surrounding
// spaces ignored. Unknown names give StateType_Unknown.
func StateVarTypeFactory(s string) StateVarType {
	if val, ok := typeNames[strings.TrimSpace(s)]; ok {
		return val
	}
	return StateType_Unknown
}

// IsKnownType reports whether name is a recognized UPnP data type.
func IsKnownType(name string) bool {
	return StateVarTypeFactory(name) != StateType_Unknown
}

// KnownTypes lists every recognized UPnP data type name.
func KnownTypes() []string {
	return append([]string(nil), typeStrings[1:]...)
}

func (t StateVarType) String() string {
	if int(t) >= 0 && int(t) < len(typeStrings) {
		return typeStrings[t]
	}
	return "unknown"
}

// Kind returns the value kind an argument of this type must carry.
// StateType_Unknown maps to values.KindNull.
func (t StateVarType) Kind() values.Kind {
	switch {
	case t.IsFloat():
		return values.KindReal
	case t.IsInteger():
		return values.KindInteger
	case t.IsString():
		return values.KindText
	case t.IsBool():
		return values.KindBoolean
	case t.IsTime():
		return values.KindTime
	default:
		return values.KindNull
	}
}
