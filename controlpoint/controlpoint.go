// Package controlpoint turns a UPnP service description into a catalog of
// callable, argument-checked remote actions and wires GENA subscriptions
// for the service.
package controlpoint

import (
	"context"
	"fmt"
	"net/http"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/events"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/scpd"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/validator"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
	"github.com/sirupsen/logrus"
)

// Options of a ControlPoint. Start from DefaultOptions: the zero value
// disables advanced typecasting.
type Options struct {
	// ValidateArguments checks every argument against its state variable
	// before a call is sent.
	ValidateArguments bool `yaml:"validate_arguments"`

	// AdvancedTypecasting is forwarded to the transport.
	AdvancedTypecasting bool `yaml:"advanced_typecasting"`

	// CallOptions are merged into every call. Its Namespace and
	// AdvancedTypecasting fields are ignored.
	CallOptions soap.CallOptions `yaml:"call_options"`

	// Invoker replaces the default SOAP client.
	Invoker    soap.Invoker       `yaml:"-"`
	HTTPClient *http.Client       `yaml:"-"`
	Logger     logrus.FieldLogger `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{AdvancedTypecasting: true}
}

// ControlPoint is the client side of one service on one device.
type ControlPoint struct {
	desc            *scpd.Description
	definition      []byte
	serviceEndpoint string
	eventsEndpoint  string
	opts            Options
	logger          logrus.FieldLogger

	invoker    soap.Invoker
	validators *validator.DefaultProvider
	provider   validator.Provider
	methods    map[string]*ServiceMethod
	events     *events.Client
}

// New builds a control point for desc. The validators of the whole state
// table are built here, so a state variable of unknown data type fails
// construction with upnperr.ErrUnrecognizedType.
func New(desc *scpd.Description, serviceEndpoint, eventsEndpoint string, opts Options) (*ControlPoint, error) {
	validators, err := validator.NewDefaultProvider(desc.StateTable())
	if err != nil {
		return nil, fmt.Errorf("building validators of %s: %w", desc.ServiceType(), err)
	}

	logger := pmolog.OrDiscard(opts.Logger)

	cp := &ControlPoint{
		desc:            desc,
		serviceEndpoint: serviceEndpoint,
		eventsEndpoint:  eventsEndpoint,
		opts:            opts,
		logger:          logger,
		invoker:         opts.Invoker,
		validators:      validators,
		provider:        validator.NoOpProvider(),
		methods:         make(map[string]*ServiceMethod, desc.Actions().Len()),
		events: events.NewClient(eventsEndpoint,
			events.WithHTTPClient(opts.HTTPClient),
			events.WithLogger(logger)),
	}

	if opts.ValidateArguments {
		cp.provider = validators
	}
	if cp.invoker == nil {
		cp.invoker = soap.NewClient(serviceEndpoint,
			soap.WithHTTPClient(opts.HTTPClient),
			soap.WithLogger(logger))
	}

	for ac := range desc.Actions().All() {
		cp.methods[ac.Name()] = NewServiceMethod(desc.ServiceType(), ac)
	}

	logger.Infof("✅ Control point for %s ready: %d actions at %s", desc.ServiceType(), len(cp.methods), serviceEndpoint)
	return cp, nil
}

// FromSCPD parses an SCPD document and builds a control point from it.
func FromSCPD(serviceType, serviceEndpoint, eventsEndpoint string, definition []byte, opts Options) (*ControlPoint, error) {
	desc, err := scpd.Parse(serviceType, definition)
	if err != nil {
		return nil, err
	}
	cp, err := New(desc, serviceEndpoint, eventsEndpoint, opts)
	if err != nil {
		return nil, err
	}
	cp.definition = append([]byte(nil), definition...)
	return cp, nil
}

func (cp *ControlPoint) ServiceType() string { return cp.desc.ServiceType() }

func (cp *ControlPoint) ServiceEndpoint() string { return cp.serviceEndpoint }

func (cp *ControlPoint) EventsEndpoint() string { return cp.eventsEndpoint }

func (cp *ControlPoint) Description() *scpd.Description { return cp.desc }

// MethodNames lists the actions in description order.
func (cp *ControlPoint) MethodNames() []string {
	return cp.desc.Actions().Names()
}

func (cp *ControlPoint) Method(name string) (*ServiceMethod, error) {
	m, ok := cp.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", upnperr.ErrUnknownMethod, name)
	}
	return m, nil
}

// ArgumentsOf returns the input argument names of method.
func (cp *ControlPoint) ArgumentsOf(method string) ([]string, error) {
	m, err := cp.Method(method)
	if err != nil {
		return nil, err
	}
	return m.InArgs(), nil
}

// OutputsOf returns the output argument names of method.
func (cp *ControlPoint) OutputsOf(method string) ([]string, error) {
	m, err := cp.Method(method)
	if err != nil {
		return nil, err
	}
	return m.OutArgs(), nil
}

// ValidatorFor returns the validator applied to arg of method. It is
// available whether or not ValidateArguments is set.
func (cp *ControlPoint) ValidatorFor(method, arg string) (*validator.Validator, error) {
	m, err := cp.Method(method)
	if err != nil {
		return nil, err
	}
	ref, ok := m.ArgReference(arg)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no argument %s", upnperr.ErrUnknownArgument, method, arg)
	}
	return cp.validators.Validator(ref)
}

// EventVariables lists the state variables the device sends events for.
func (cp *ControlPoint) EventVariables() []string {
	return cp.desc.EventedVariables()
}

// Call invokes method with args and returns its declared outputs.
//
//	out, err := cp.Call(ctx, "GetVolume", values.RecordOf("InstanceID", 0, "Channel", "Master"))
//	volume := out.Value("CurrentVolume")
func (cp *ControlPoint) Call(ctx context.Context, method string, args *values.Record) (*values.Record, error) {
	m, err := cp.Method(method)
	if err != nil {
		return nil, err
	}

	out, err := m.Call(ctx, cp.invoker, args, cp.provider, cp.callOptions())
	if err != nil {
		cp.logger.Warnf("⚠️ %s failed: %v", method, err)
		return nil, err
	}
	return out, nil
}

func (cp *ControlPoint) callOptions() soap.CallOptions {
	o := cp.opts.CallOptions.Merge(soap.CallOptions{})
	o.Namespace = cp.desc.ServiceType()
	o.AdvancedTypecasting = cp.opts.AdvancedTypecasting
	return o
}
