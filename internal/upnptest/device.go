// Package upnptest runs an in-process UPnP service for tests: it serves a
// service description, answers SOAP control requests with canned results,
// manages GENA subscriptions and pushes NOTIFY messages to subscribers.
package upnptest

import (
	_ "embed"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const RenderingControl = "urn:schemas-upnp-org:service:RenderingControl:1"

//go:embed renderingcontrol.xml
var RenderingControlSCPD []byte

const (
	SCPDPath    = "/scpd.xml"
	ControlPath = "/control"
	EventPath   = "/event"
)

// Call is a control request as received by the device.
type Call struct {
	Action     string
	SOAPAction string
	Namespace  string
	Args       []soap.Arg
	Header     http.Header
}

// Arg returns the value of a named argument.
func (c Call) Arg(name string) (string, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ArgNames returns the argument names in wire order.
func (c Call) ArgNames() []string {
	names := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		names = append(names, a.Name)
	}
	return names
}

type fault struct {
	status      int
	code        int
	description string
}

// Device is a fake UPnP service. The zero value is not usable, use
// NewDevice.
type Device struct {
	serviceType string
	scpd        []byte
	server      *httptest.Server
	logger      logrus.FieldLogger

	mu        sync.Mutex
	calls     []Call
	responses map[string][]soap.Arg
	faults    map[string]fault
	raw       map[string]string

	subs             map[string]*Subscription
	requests         []GenaRequest
	subscribeStatus  int
	renewStatus      int
	unsubscribeFail  bool
	omitSID          bool
	timeoutHeader    *string
	subscribeCount   int
	renewCount       int
	unsubscribeCount int
}

type Option func(*Device)

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Device) {
		d.logger = pmolog.OrDiscard(l)
	}
}

// NewDevice starts a device exposing serviceType with the given SCPD.
func NewDevice(serviceType string, scpd []byte, opts ...Option) *Device {
	d := &Device{
		serviceType: serviceType,
		scpd:        scpd,
		logger:      pmolog.Discard(),
		responses:   make(map[string][]soap.Arg),
		faults:      make(map[string]fault),
		raw:         make(map[string]string),
		subs:        make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(d)
	}

	router := mux.NewRouter()
	router.HandleFunc(SCPDPath, d.handleSCPD).Methods(http.MethodGet)
	router.HandleFunc(ControlPath, d.handleControl).Methods(http.MethodPost)
	router.HandleFunc(EventPath, d.handleEventSub).Methods(methodSubscribe, methodUnsubscribe)

	d.server = httptest.NewServer(router)
	return d
}

// NewRenderingControl starts a device serving the bundled RenderingControl
// description.
func NewRenderingControl(opts ...Option) *Device {
	return NewDevice(RenderingControl, RenderingControlSCPD, opts...)
}

func (d *Device) Close() {
	d.server.Close()
}

func (d *Device) ServiceType() string { return d.serviceType }
func (d *Device) URL() string         { return d.server.URL }
func (d *Device) SCPDURL() string     { return d.server.URL + SCPDPath }
func (d *Device) ControlURL() string  { return d.server.URL + ControlPath }
func (d *Device) EventURL() string    { return d.server.URL + EventPath }

func (d *Device) handleSCPD(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Write(d.scpd)
}

// SetResponse sets the out arguments answered to action.
func (d *Device) SetResponse(action string, out ...soap.Arg) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[action] = out
	delete(d.faults, action)
	delete(d.raw, action)
}

// SetFault makes action answer a SOAP fault with the given HTTP status.
func (d *Device) SetFault(action string, status, code int, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[action] = fault{status: status, code: code, description: description}
}

// SetRawResponse makes action answer body verbatim with status 200.
func (d *Device) SetRawResponse(action, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raw[action] = body
}

// Calls returns the control requests received so far.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

func (d *Device) LastCall() (Call, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return Call{}, false
	}
	return d.calls[len(d.calls)-1], true
}

func (d *Device) handleControl(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req, err := soap.ParseRequest(body)
	if err != nil {
		d.logger.Errorf("❌ Failed to parse SOAP envelope: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, soap.BuildFault(402, "Invalid Args"))
		return
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{
		Action:     req.Action,
		SOAPAction: r.Header.Get("SOAPAction"),
		Namespace:  req.Namespace,
		Args:       req.Args,
		Header:     r.Header.Clone(),
	})
	f, faulty := d.faults[req.Action]
	raw, isRaw := d.raw[req.Action]
	out := d.responses[req.Action]
	d.mu.Unlock()

	d.logger.Infof("📡 Control request %s", req.Action)

	switch {
	case faulty:
		writeEnvelope(w, f.status, soap.BuildFault(f.code, f.description))
	case isRaw:
		w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, raw)
	default:
		writeEnvelope(w, http.StatusOK, soap.BuildResponse(d.serviceType, req.Action, out))
	}
}

type document interface {
	WriteTo(w io.Writer) (int64, error)
}

func writeEnvelope(w http.ResponseWriter, status int, doc document) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(status)
	doc.WriteTo(w)
}
