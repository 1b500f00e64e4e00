package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"github.com/sirupsen/logrus"
)

// State of a SubscriptionManager.
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Active
	Renewing
	Failed
)

var stateNames = [...]string{"unsubscribed", "subscribing", "active", "renewing", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// URLProvider returns the callback URL to subscribe with. It is called on
// every fresh subscribe, so a listener restarted on another port is picked
// up.
type URLProvider func() (string, error)

// StaticURL returns a provider always answering u.
func StaticURL(u string) URLProvider {
	return func() (string, error) { return u, nil }
}

const (
	DefaultRequestedTimeout     = 300 * time.Second
	DefaultResubscriptionBuffer = 10 * time.Second
	DefaultPollInterval         = time.Second
	DefaultUnsubscribeTimeout   = 5 * time.Second
)

type ManagerOptions struct {
	// RequestedTimeout is the subscription duration asked for. The device
	// may grant another one.
	RequestedTimeout time.Duration `yaml:"requested_timeout"`
	// ResubscriptionBuffer is how long before expiry the renewal is sent.
	// Zero selects the default, a negative value renews at expiry.
	ResubscriptionBuffer time.Duration `yaml:"resubscription_buffer"`
	// ExistingSID resumes a subscription instead of opening a new one. A
	// fresh subscription is made if the device no longer knows it.
	ExistingSID string `yaml:"existing_sid,omitempty"`
	// PollInterval is the granularity of the expiry check.
	PollInterval time.Duration `yaml:"poll_interval"`
	// UnsubscribeTimeout bounds the UNSUBSCRIBE request sent on teardown.
	UnsubscribeTimeout time.Duration `yaml:"unsubscribe_timeout"`

	Logger logrus.FieldLogger `yaml:"-"`
	// OnShutdown runs once at the end of every Unsubscribe.
	OnShutdown func() `yaml:"-"`
	// OnFailure receives the error that ended the background loop.
	OnFailure func(error) `yaml:"-"`
}

// DefaultManagerOptions returns the options used for zero fields.
func DefaultManagerOptions() ManagerOptions {
	return ManagerOptions{
		RequestedTimeout:     DefaultRequestedTimeout,
		ResubscriptionBuffer: DefaultResubscriptionBuffer,
		PollInterval:         DefaultPollInterval,
		UnsubscribeTimeout:   DefaultUnsubscribeTimeout,
	}
}

func (o ManagerOptions) withDefaults() ManagerOptions {
	d := DefaultManagerOptions()
	if o.RequestedTimeout <= 0 {
		o.RequestedTimeout = d.RequestedTimeout
	}
	if o.ResubscriptionBuffer < 0 {
		o.ResubscriptionBuffer = 0
	} else if o.ResubscriptionBuffer == 0 {
		o.ResubscriptionBuffer = d.ResubscriptionBuffer
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.UnsubscribeTimeout <= 0 {
		o.UnsubscribeTimeout = d.UnsubscribeTimeout
	}
	return o
}

// SubscriptionManager keeps one GENA subscription alive. A background loop
// subscribes, then renews shortly before each expiry; when a renewal finds
// the subscription gone it subscribes afresh. Any other failure ends the
// loop in the Failed state.
type SubscriptionManager struct {
	client      Subscriber
	callbackURL URLProvider
	opts        ManagerOptions
	logger      logrus.FieldLogger

	mu     sync.Mutex
	sid    string
	expiry time.Time
	state  State
	err    error
	cancel context.CancelFunc
	done   chan struct{}
	// stopping is set while Unsubscribe tears the loop down. cancel stays
	// set until teardown ends.
	stopping bool
}

func NewSubscriptionManager(client Subscriber, callbackURL URLProvider, opts ManagerOptions) *SubscriptionManager {
	opts = opts.withDefaults()
	return &SubscriptionManager{
		client:      client,
		callbackURL: callbackURL,
		opts:        opts,
		logger:      pmolog.OrDiscard(opts.Logger),
		sid:         opts.ExistingSID,
	}
}

// Subscribe starts the background loop and returns at once. It does
// nothing while a loop is running, has failed or is being torn down;
// Unsubscribe resets it.
func (m *SubscriptionManager) Subscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.err = nil
	go m.run(ctx, m.done)
}

// Unsubscribe stops the loop, sends a best-effort UNSUBSCRIBE, forgets the
// subscription id and runs OnShutdown. It fails with upnperr.ErrIllegalState
// when no loop was started or another Unsubscribe is in progress.
func (m *SubscriptionManager) Unsubscribe() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	if cancel == nil || m.stopping {
		m.mu.Unlock()
		return fmt.Errorf("%w: no active subscription", upnperr.ErrIllegalState)
	}
	m.stopping = true
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	sid := m.sid
	m.mu.Unlock()

	if sid != "" {
		ctx, stop := context.WithTimeout(context.Background(), m.opts.UnsubscribeTimeout)
		if err := m.client.Unsubscribe(ctx, sid); err != nil {
			m.logger.Errorf("❌ Error unsubscribing with SID %s: %v", sid, err)
		}
		stop()
	}

	m.mu.Lock()
	m.sid = ""
	m.expiry = time.Time{}
	m.state = Unsubscribed
	m.cancel = nil
	m.stopping = false
	m.mu.Unlock()

	if m.opts.OnShutdown != nil {
		m.opts.OnShutdown()
	}
	return nil
}

// SubscriptionID returns the held subscription id, empty when none.
func (m *SubscriptionManager) SubscriptionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sid
}

func (m *SubscriptionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error that ended the loop, nil while it runs.
func (m *SubscriptionManager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed when the current loop exits. It is nil before Subscribe.
func (m *SubscriptionManager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// RenewalDeadline is the time the next renewal is due.
func (m *SubscriptionManager) RenewalDeadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiry
}

func (m *SubscriptionManager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	m.logger.Info("✅ Starting subscription loop")

	var err error
	if m.SubscriptionID() == "" {
		err = m.subscribe(ctx)
	} else {
		err = m.renew(ctx)
	}
	if err != nil {
		m.fail(ctx, err)
		return
	}

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("✅ Ending subscription loop")
			return
		case now := <-ticker.C:
			if now.Before(m.RenewalDeadline()) {
				continue
			}
			if err := m.renew(ctx); err != nil {
				m.fail(ctx, err)
				return
			}
		}
	}
}

func (m *SubscriptionManager) subscribe(ctx context.Context) error {
	m.setState(Subscribing)

	url, err := m.callbackURL()
	if err != nil {
		return fmt.Errorf("resolving callback URL: %w", err)
	}

	resp, err := m.client.Subscribe(ctx, url, m.opts.RequestedTimeout)
	if err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	m.mu.Lock()
	m.sid = resp.SID
	m.expiry = m.deadline(resp.Timeout)
	m.state = Active
	m.mu.Unlock()
	return nil
}

func (m *SubscriptionManager) renew(ctx context.Context) error {
	m.mu.Lock()
	sid := m.sid
	m.state = Renewing
	m.mu.Unlock()

	m.logger.Infof("♻️ Refreshing subscription for: %s", sid)
	granted, err := m.client.Resubscribe(ctx, sid, m.opts.RequestedTimeout)
	if errors.Is(err, upnperr.ErrSubscriptionLost) {
		m.logger.Warnf("⚠️ Subscription %s lost, trying to start a new one: %v", sid, err)
		m.mu.Lock()
		m.sid = ""
		m.mu.Unlock()
		return m.subscribe(ctx)
	}
	if err != nil {
		return fmt.Errorf("renewing %s: %w", sid, err)
	}

	m.mu.Lock()
	m.expiry = m.deadline(granted)
	m.state = Active
	m.mu.Unlock()
	return nil
}

func (m *SubscriptionManager) deadline(granted time.Duration) time.Time {
	return time.Now().Add(granted - m.opts.ResubscriptionBuffer)
}

func (m *SubscriptionManager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// fail records a fatal loop error. Errors caused by Unsubscribe cancelling
// the loop are not failures.
func (m *SubscriptionManager) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}

	m.logger.Errorf("❌ Subscription loop stopped: %v", err)

	m.mu.Lock()
	m.state = Failed
	m.err = err
	m.mu.Unlock()

	if m.opts.OnFailure != nil {
		m.opts.OnFailure(err)
	}
}
