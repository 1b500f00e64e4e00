package events

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/internal/netutils"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxNotifyBody = 1 << 20

// Event is one NOTIFY message received from a device.
type Event struct {
	SID       string
	Seq       uint32
	Variables map[string]string
}

// Callback receives events. It runs on the HTTP serving goroutine of the
// request and may be called concurrently for different requests.
type Callback func(Event)

type ListenerOptions struct {
	// Address to bind, all interfaces when empty.
	Address string `yaml:"address"`
	// Port to bind, an ephemeral port when 0.
	Port int `yaml:"port"`
	// AdvertiseHost is the host written in the callback URL. When empty the
	// bind address is used if specific, else the address facing Target.
	AdvertiseHost string `yaml:"advertise_host"`
	// Target is a device URL used to choose the advertised address.
	Target string `yaml:"-"`

	Callback Callback           `yaml:"-"`
	Logger   logrus.FieldLogger `yaml:"-"`
}

// Listener is the HTTP endpoint devices deliver NOTIFY messages to.
type Listener struct {
	opts   ListenerOptions
	logger logrus.FieldLogger

	// callbackHost picks the host facing a target, which may dial it.
	callbackHost func(target string) string

	mu     sync.Mutex
	server *http.Server
	url    string
	served chan struct{}
}

func NewListener(opts ListenerOptions) *Listener {
	return &Listener{
		opts:         opts,
		logger:       pmolog.OrDiscard(opts.Logger),
		callbackHost: netutils.CallbackHost,
	}
}

// Listen starts serving and returns the callback URL. Calling it again
// while running returns the same URL without rebinding.
func (l *Listener) Listen() (string, error) {
	if u, err := l.URL(); err == nil {
		return u, nil
	}

	// Resolving the host may dial the target: done before taking l.mu.
	host := l.advertiseHost()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server != nil {
		return l.url, nil
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(l.opts.Address, strconv.Itoa(l.opts.Port)))
	if err != nil {
		return "", fmt.Errorf("listening for events: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	router := mux.NewRouter()
	router.Methods(MethodNotify).PathPrefix("/").HandlerFunc(l.handleNotify)

	srv := &http.Server{Handler: router}
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Errorf("❌ event listener error: %v", err)
		}
	}()

	l.server = srv
	l.served = served
	l.url = fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(port)))

	l.logger.Infof("✅ Event listener started on %s", l.url)
	return l.url, nil
}

func (l *Listener) advertiseHost() string {
	if l.opts.AdvertiseHost != "" {
		return l.opts.AdvertiseHost
	}
	if ip := net.ParseIP(l.opts.Address); ip != nil && !ip.IsUnspecified() {
		return l.opts.Address
	}
	return l.callbackHost(l.opts.Target)
}

// URL returns the callback URL, upnperr.ErrNotStarted before Listen.
func (l *Listener) URL() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server == nil {
		return "", upnperr.ErrNotStarted
	}
	return l.url, nil
}

func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.server != nil
}

// Shutdown stops serving immediately, in-flight requests included. The
// listener may be started again, possibly on another port.
func (l *Listener) Shutdown() error {
	l.mu.Lock()
	srv, served := l.server, l.served
	l.server, l.served, l.url = nil, nil, ""
	l.mu.Unlock()

	if srv == nil {
		return fmt.Errorf("%w: event listener is not started", upnperr.ErrIllegalState)
	}

	err := srv.Close()
	<-served
	l.logger.Infof("✅ Event listener stopped")
	return err
}

func (l *Listener) handleNotify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotifyBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ev := Event{
		SID:       r.Header.Get("SID"),
		Variables: ParseEvent(body),
	}
	if seq, err := strconv.ParseUint(r.Header.Get("SEQ"), 10, 32); err == nil {
		ev.Seq = uint32(seq)
	}

	l.logger.Debugf("📡 NOTIFY from %s SID=%s SEQ=%d:\n%s", r.RemoteAddr, ev.SID, ev.Seq, pmolog.PrettyPrintXML(string(body)))

	if l.opts.Callback != nil {
		l.opts.Callback(ev)
	}
	w.WriteHeader(http.StatusOK)
}
