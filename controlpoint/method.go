package controlpoint

import (
	"context"
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/actions"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/validator"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
)

// ServiceMethod binds one action of a service to the transport. It holds no
// per-call state and may be shared between goroutines.
type ServiceMethod struct {
	serviceType string
	action      *actions.Action
}

func NewServiceMethod(serviceType string, action *actions.Action) *ServiceMethod {
	return &ServiceMethod{serviceType: serviceType, action: action}
}

func (m *ServiceMethod) Name() string {
	return m.action.Name()
}

// InArgs returns the declared input arguments in declaration order.
func (m *ServiceMethod) InArgs() []string {
	return m.action.InArgs()
}

func (m *ServiceMethod) OutArgs() []string {
	return m.action.OutArgs()
}

// ArgReference returns the state variable an argument is declared against.
func (m *ServiceMethod) ArgReference(arg string) (string, bool) {
	return m.action.RelatedStateVariable(arg)
}

func (m *ServiceMethod) SOAPAction() string {
	return soap.SOAPAction(m.serviceType, m.action.Name())
}

// Call checks args against the declared inputs, validates each value, invokes
// the action once and maps the response onto the declared outputs.
//
// The result holds every declared output, in order; an output the device
// did not send is Null.
func (m *ServiceMethod) Call(ctx context.Context, invoker soap.Invoker, args *values.Record, provider validator.Provider, opts soap.CallOptions) (*values.Record, error) {
	in := m.action.InArgs()

	var unsupported []string
	for _, name := range args.Keys() {
		if _, ok := m.action.InArgument(name); !ok {
			unsupported = append(unsupported, name)
		}
	}
	if len(unsupported) > 0 {
		return nil, &upnperr.UnsupportedArgumentError{Unsupported: unsupported, Supported: in}
	}

	if provider == nil {
		provider = validator.NoOpProvider()
	}

	ordered := values.NewRecord()
	for _, name := range in {
		value, ok := args.Get(name)
		if !ok {
			continue
		}
		ref, _ := m.action.RelatedStateVariable(name)
		v, err := provider.Validator(ref)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		if err := v.Validate(value); err != nil {
			return nil, &upnperr.InvalidArgumentError{Argument: name, Err: err}
		}
		ordered.Set(name, value)
	}

	resp, err := invoker.Invoke(ctx, m.action.Name(), ordered, m.SOAPAction(), opts)
	if err != nil {
		return nil, err
	}
	return m.unwrap(resp)
}

// unwrap strips the <ActionResponse> wrapper and picks the declared outputs
// out of it.
func (m *ServiceMethod) unwrap(resp *values.Record) (*values.Record, error) {
	if resp.Len() > 1 {
		return nil, fmt.Errorf("%w: response of %s has keys %v", upnperr.ErrUnexpectedResponseShape, m.Name(), resp.Keys())
	}

	var body *values.Record
	for _, v := range resp.All() {
		body, _ = v.AsRecord()
	}

	out := values.NewRecord()
	for _, name := range m.action.OutArgs() {
		out.Set(name, body.Value(soap.FieldName(name)))
	}
	return out, nil
}
