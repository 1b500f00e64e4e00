// Package soap implements the UPnP control transport: SOAP 1.1 envelopes
// posted to a service control URL, and the decoding of their responses
// into values.Record trees.
package soap

import (
	"context"
	"maps"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
)

const (
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	EncodingStyle     = "http://schemas.xmlsoap.org/soap/encoding/"
	ControlNamespace  = "urn:schemas-upnp-org:control-1-0"
)

// Invoker performs one remote action call. args keys are the declared
// argument names; the returned record is keyed by FieldName of the response
// elements and holds exactly one entry, the action response wrapper, for a
// well behaved device.
type Invoker interface {
	Invoke(ctx context.Context, action string, args *values.Record, soapAction string, opts CallOptions) (*values.Record, error)
}

// CallOptions tunes a single call.
type CallOptions struct {
	// Namespace is the service type URN, bound to the "u" prefix.
	Namespace string `yaml:"namespace,omitempty"`

	// AdvancedTypecasting turns "true"/"false" and ISO 8601 date and time
	// texts of the response into Boolean and Time values.
	AdvancedTypecasting bool `yaml:"advanced_typecasting"`

	// Headers are added to the HTTP request. SOAPACTION cannot be replaced.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Attributes are added to the action element. xmlns:u cannot be replaced.
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// Timeout bounds the HTTP exchange when positive.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Merge returns o overridden by the non zero fields of override. Header
// and attribute maps are merged key by key, override winning.
func (o CallOptions) Merge(override CallOptions) CallOptions {
	out := o
	if override.Namespace != "" {
		out.Namespace = override.Namespace
	}
	if override.AdvancedTypecasting {
		out.AdvancedTypecasting = true
	}
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	out.Headers = mergeMaps(o.Headers, override.Headers)
	out.Attributes = mergeMaps(o.Attributes, override.Attributes)
	return out
}

func mergeMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

// SOAPAction returns the SOAPACTION header value for an action, quotes
// excluded.
func SOAPAction(serviceType, action string) string {
	return serviceType + "#" + action
}
