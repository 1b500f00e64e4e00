package statevariables

// IsNumeric reports whether t holds integer or floating point values.
func (t StateVarType) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// IsInteger checks if the state variable type is one of the signed or
// unsigned integer types (ui1, ui2, ui4, i1, i2, i4, int).
func (t StateVarType) IsInteger() bool {
	switch t {
	case StateType_UI1, StateType_UI2, StateType_UI4,
		StateType_I1, StateType_I2, StateType_I4,
		StateType_Int:
		return true
	default:
		return false
	}
}

// IsFloat returns a boolean indicating whether the given state variable type
// represents a float number. If the state variable type is one of R4, R8,
// Number, Fixed14_4 or the non standard float it returns true.
func (t StateVarType) IsFloat() bool {
	switch t {
	case StateType_R4, StateType_R8, StateType_Number, StateType_Fixed14_4, StateType_Float:
		return true
	default:
		return false
	}
}

// IsString covers every type carried as text on the wire and in arguments,
// binary encodings, identifiers and URIs included.
func (t StateVarType) IsString() bool {
	switch t {
	case StateType_Char, StateType_String,
		StateType_BinBase64, StateType_BinHex,
		StateType_UUID, StateType_URI:
		return true
	default:
		return false
	}
}

func (t StateVarType) IsBool() bool {
	return t == StateType_Bool || t == StateType_Boolean
}

// IsTime checks for the date and time types, with or without timezone.
func (t StateVarType) IsTime() bool {
	switch t {
	case StateType_Date, StateType_DateTime, StateType_DateTimeTZ,
		StateType_Time, StateType_TimeTZ:
		return true
	default:
		return false
	}
}
