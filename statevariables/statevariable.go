package statevariables

import (
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"
)

// StateVariable is the description of one entry of a serviceStateTable.
// The declared data type is kept verbatim, so a description using a type
// outside the UPnP table can still be loaded and inspected.
type StateVariable struct {
	name          string
	dataType      string
	valueType     StateVarType
	sendEvents    bool
	defaultValue  *string
	valueRange    *ValueRange
	allowedValues []string
}

func NewStateVariable(name, dataType string) *StateVariable {
	return &StateVariable{
		name:      name,
		dataType:  dataType,
		valueType: StateVarTypeFactory(dataType),
	}
}

// Name returns the state variable's name (e.g., "Volume", "A_ARG_TYPE_InstanceID").
func (sv *StateVariable) Name() string {
	return sv.name
}

func (sv *StateVariable) TypeID() string {
	return "StateVariable"
}

// DataType returns the dataType string as declared in the description.
func (sv *StateVariable) DataType() string {
	return sv.dataType
}

// Type returns the UPnP data type, StateType_Unknown when the declared type
// is not recognized.
func (sv *StateVariable) Type() StateVarType {
	return sv.valueType
}

func (sv *StateVariable) SendEvents() bool {
	return sv.sendEvents
}

func (sv *StateVariable) SetSendEvents(b bool) *StateVariable {
	sv.sendEvents = b
	return sv
}

func (sv *StateVariable) SetDefault(value string) *StateVariable {
	sv.defaultValue = &value
	return sv
}

func (sv *StateVariable) HasDefault() bool {
	return sv.defaultValue != nil
}

func (sv *StateVariable) DefaultValue() (string, bool) {
	if sv.defaultValue == nil {
		return "", false
	}
	return *sv.defaultValue, true
}

// SetRange defines the inclusive value range [min, max]. Bounds given in
// the wrong order are swapped. Only numeric types accept a range.
//
// Example:
//
//	err := volume.SetRange(0, 100)
func (sv *StateVariable) SetRange(min, max float64) error {
	if sv.valueType != StateType_Unknown && !sv.valueType.IsNumeric() {
		return fmt.Errorf("%s: a range cannot be set on a %s state variable", sv.name, sv.dataType)
	}
	if min > max {
		min, max = max, min
	}
	step := 0.0
	if sv.valueRange != nil {
		step = sv.valueRange.Step
	}
	sv.valueRange = &ValueRange{Min: min, Max: max, Step: step}

	log.Debugf("🐞 Setting range of %s to [%v, %v]", sv.name, min, max)
	return nil
}

// SetStep sets the step of an already defined range.
func (sv *StateVariable) SetStep(step float64) error {
	if sv.valueRange == nil {
		return fmt.Errorf("%s: no range set, cannot define a step", sv.name)
	}
	if step <= 0 {
		return fmt.Errorf("%s: step must be positive (got %v)", sv.name, step)
	}
	sv.valueRange.Step = step
	return nil
}

func (sv *StateVariable) HasRange() bool {
	return sv.valueRange != nil
}

// Range returns a copy of the value range, nil when none is defined.
func (sv *StateVariable) Range() *ValueRange {
	if sv.valueRange == nil {
		return nil
	}
	r := *sv.valueRange
	return &r
}

// AppendAllowedValue adds entries to the allowedValueList. Duplicates are
// ignored.
func (sv *StateVariable) AppendAllowedValue(values ...string) *StateVariable {
	for _, v := range values {
		if !slices.Contains(sv.allowedValues, v) {
			sv.allowedValues = append(sv.allowedValues, v)
		}
	}
	return sv
}

func (sv *StateVariable) HasAllowedValues() bool {
	return len(sv.allowedValues) > 0
}

func (sv *StateVariable) AllowedValues() []string {
	return slices.Clone(sv.allowedValues)
}
