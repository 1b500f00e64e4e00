package events

import (
	"testing"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/internal/upnptest"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"github.com/stretchr/testify/assert"
)

func TestParseEvent(t *testing.T) {
	body := upnptest.BuildPropertySet(
		soap.Arg{Name: "Volume", Value: "25"},
		soap.Arg{Name: "Mute", Value: "0"},
	)
	assert.Equal(t, map[string]string{"Volume": "25", "Mute": "0"}, ParseEvent(body))
}

func TestParseEventUnprefixed(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<propertyset>
  <property><LastChange>
    &lt;Event/&gt;
  </LastChange></property>
  <other><Ignored>1</Ignored></other>
</propertyset>`)
	assert.Equal(t, map[string]string{"LastChange": "<Event/>"}, ParseEvent(body))
}

func TestParseEventGarbage(t *testing.T) {
	assert.Empty(t, ParseEvent([]byte("not xml")))
	assert.Empty(t, ParseEvent([]byte("<root><property><A>1</A></property></root>")))
	assert.NotNil(t, ParseEvent(nil))
}
