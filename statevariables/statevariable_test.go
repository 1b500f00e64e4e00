package statevariables

import (
	"testing"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateVarTypeFactory(t *testing.T) {
	kinds := map[string]values.Kind{
		"r4": values.KindReal, "r8": values.KindReal, "number": values.KindReal,
		"fixed.14.4": values.KindReal, "float": values.KindReal,
		"ui1": values.KindInteger, "ui2": values.KindInteger, "ui4": values.KindInteger,
		"i1": values.KindInteger, "i2": values.KindInteger, "i4": values.KindInteger,
		"int": values.KindInteger,
		"char": values.KindText, "string": values.KindText, "bin.base64": values.KindText,
		"bin.hex": values.KindText, "uri": values.KindText, "uuid": values.KindText,
		"bool": values.KindBoolean, "boolean": values.KindBoolean,
		"date": values.KindTime, "dateTime": values.KindTime, "dateTime.tz": values.KindTime,
		"time": values.KindTime, "time.tz": values.KindTime,
	}
	for name, kind := range kinds {
		typ := StateVarTypeFactory(name)
		require.NotEqual(t, StateType_Unknown, typ, name)
		assert.Equal(t, name, typ.String())
		assert.Equal(t, kind, typ.Kind(), name)
	}
	assert.Len(t, KnownTypes(), len(kinds))

	assert.Equal(t, StateType_Unknown, StateVarTypeFactory("datetime"))
	assert.Equal(t, StateType_Unknown, StateVarTypeFactory("ui8"))
	assert.Equal(t, StateType_UI4, StateVarTypeFactory(" ui4 "))
	assert.False(t, IsKnownType("DateTime"))
	assert.Equal(t, values.KindNull, StateType_Unknown.Kind())
}

func TestSetRange(t *testing.T) {
	volume := NewStateVariable("Volume", "ui2")
	require.NoError(t, volume.SetRange(100, 0))
	require.NoError(t, volume.SetStep(1))
	assert.Equal(t, &ValueRange{Min: 0, Max: 100, Step: 1}, volume.Range())

	mode := NewStateVariable("PlayMode", "string")
	assert.Error(t, mode.SetRange(0, 1))
	assert.Error(t, mode.SetStep(1))
}

const volumeXML = `<stateVariable sendEvents="no">
	<name>Volume</name>
	<dataType>ui2</dataType>
	<defaultValue>20</defaultValue>
	<allowedValueRange>
		<minimum>0</minimum>
		<maximum>100</maximum>
		<step>1</step>
	</allowedValueRange>
</stateVariable>`

func parseElement(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	return doc.Root()
}

func TestFromXMLElement(t *testing.T) {
	sv, err := FromXMLElement(parseElement(t, volumeXML))
	require.NoError(t, err)

	assert.Equal(t, "Volume", sv.Name())
	assert.Equal(t, "ui2", sv.DataType())
	assert.Equal(t, StateType_UI2, sv.Type())
	assert.False(t, sv.SendEvents())
	def, ok := sv.DefaultValue()
	assert.True(t, ok)
	assert.Equal(t, "20", def)
	assert.Equal(t, &ValueRange{Min: 0, Max: 100, Step: 1}, sv.Range())
	assert.False(t, sv.HasAllowedValues())
}

func TestFromXMLElementAllowedValues(t *testing.T) {
	sv, err := FromXMLElement(parseElement(t, `<s:stateVariable xmlns:s="urn:schemas-upnp-org:service-1-0" sendEvents="yes">
		<s:name>TransportState</s:name>
		<s:dataType>string</s:dataType>
		<s:allowedValueList>
			<s:allowedValue>STOPPED</s:allowedValue>
			<s:allowedValue>PLAYING</s:allowedValue>
		</s:allowedValueList>
	</s:stateVariable>`))
	require.NoError(t, err)

	assert.True(t, sv.SendEvents())
	assert.Equal(t, []string{"STOPPED", "PLAYING"}, sv.AllowedValues())
	assert.False(t, sv.HasRange())
}

func TestFromXMLElementErrors(t *testing.T) {
	_, err := FromXMLElement(parseElement(t, `<stateVariable><dataType>ui4</dataType></stateVariable>`))
	assert.Error(t, err)

	_, err = FromXMLElement(parseElement(t, `<stateVariable><name>X</name><dataType>ui4</dataType>
		<allowedValueRange><minimum>low</minimum><maximum>1</maximum></allowedValueRange></stateVariable>`))
	assert.Error(t, err)

	sv, err := FromXMLElement(parseElement(t, `<stateVariable><name>X</name><dataType>ui8</dataType></stateVariable>`))
	require.NoError(t, err)
	assert.Equal(t, StateType_Unknown, sv.Type())
	assert.Equal(t, "ui8", sv.DataType())
}

func TestXMLRoundTrip(t *testing.T) {
	sv := NewStateVariable("Mute", "boolean").SetSendEvents(true).SetDefault("0")
	back, err := FromXMLElement(sv.ToXMLElement())
	require.NoError(t, err)
	assert.Equal(t, sv, back)
}

func TestStateVariableSet(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<serviceStateTable>` + volumeXML +
		`<stateVariable sendEvents="yes"><name>LastChange</name><dataType>string</dataType></stateVariable>
		</serviceStateTable>`))

	set, err := StateVariableSetFromXMLElement(doc.Root())
	require.NoError(t, err)
	assert.Equal(t, []string{"Volume", "LastChange"}, set.Names())

	evented := set.Evented()
	require.Len(t, evented, 1)
	assert.Equal(t, "LastChange", evented[0].Name())

	assert.Len(t, set.ToXMLElement().ChildElements(), 2)
}
