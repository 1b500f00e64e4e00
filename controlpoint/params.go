package controlpoint

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Params is everything needed to rebuild a control point later, typically
// stored as YAML.
type Params struct {
	URN             string  `yaml:"urn"`
	ServiceEndpoint string  `yaml:"service_endpoint"`
	EventsEndpoint  string  `yaml:"events_endpoint"`
	Definition      string  `yaml:"definition"`
	Options         Options `yaml:"options"`
}

// Params captures the control point. A control point built with New has its
// description serialized back to SCPD.
func (cp *ControlPoint) Params() (Params, error) {
	definition := cp.definition
	if definition == nil {
		var err error
		if definition, err = cp.desc.Bytes(); err != nil {
			return Params{}, err
		}
	}
	return Params{
		URN:             cp.desc.ServiceType(),
		ServiceEndpoint: cp.serviceEndpoint,
		EventsEndpoint:  cp.eventsEndpoint,
		Definition:      string(definition),
		Options:         cp.opts,
	}, nil
}

// FromParams rebuilds a control point. Runtime options (Invoker, HTTPClient,
// Logger) are taken from p.Options as set by the caller.
func FromParams(p Params) (*ControlPoint, error) {
	return FromSCPD(p.URN, p.ServiceEndpoint, p.EventsEndpoint, []byte(p.Definition), p.Options)
}

// YAML encodes p.
func (p Params) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}

// ParseParams reads Params from YAML. Missing options keep their defaults.
func ParseParams(data []byte) (Params, error) {
	p := Params{Options: DefaultOptions()}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("decoding control point params: %w", err)
	}
	return p, nil
}
