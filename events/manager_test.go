package events

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/internal/upnptest"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

// fastOptions make the device grant one second and the manager renew
// 100ms after each grant.
func fastOptions() ManagerOptions {
	return ManagerOptions{
		RequestedTimeout:     time.Second,
		ResubscriptionBuffer: 900 * time.Millisecond,
		PollInterval:         tick,
	}
}

func TestManagerOptionsDefaults(t *testing.T) {
	o := ManagerOptions{}.withDefaults()
	assert.Equal(t, DefaultManagerOptions(), o)

	o = ManagerOptions{ResubscriptionBuffer: -time.Second}.withDefaults()
	assert.Zero(t, o.ResubscriptionBuffer)
}

func TestManagerSubscribeAndRenew(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()

	var shutdowns atomic.Int32
	opts := fastOptions()
	opts.OnShutdown = func() { shutdowns.Add(1) }

	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), opts)
	assert.Equal(t, Unsubscribed, m.State())
	assert.Nil(t, m.Done())

	m.Subscribe()
	m.Subscribe()

	assert.Eventually(t, func() bool { return m.SubscriptionID() != "" }, waitFor, tick)
	sid := m.SubscriptionID()

	assert.Eventually(t, func() bool {
		_, renewals, _ := d.Counts()
		return renewals >= 2
	}, waitFor, tick)
	assert.Equal(t, sid, m.SubscriptionID())

	subs, _, _ := d.Counts()
	assert.Equal(t, 1, subs)

	require.NoError(t, m.Unsubscribe())
	assert.Equal(t, Unsubscribed, m.State())
	assert.Empty(t, m.SubscriptionID())
	assert.Empty(t, d.Subscriptions())
	assert.Equal(t, int32(1), shutdowns.Load())

	subsAtStop, renewalsAtStop, _ := d.Counts()
	time.Sleep(10 * tick)
	subsLater, renewalsLater, _ := d.Counts()
	assert.Equal(t, subsAtStop, subsLater)
	assert.Equal(t, renewalsAtStop, renewalsLater)

	assert.ErrorIs(t, m.Unsubscribe(), upnperr.ErrIllegalState)
	assert.Equal(t, int32(1), shutdowns.Load())
}

func TestManagerRecoversLostSubscription(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()

	logger, hook := pmolog.NewCapturingLogger(logrus.WarnLevel)
	opts := fastOptions()
	opts.Logger = logger

	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), opts)
	m.Subscribe()
	defer m.Unsubscribe()

	assert.Eventually(t, func() bool { return m.SubscriptionID() != "" }, waitFor, tick)
	first := m.SubscriptionID()

	d.ForgetSubscriptions()

	assert.Eventually(t, func() bool {
		sid := m.SubscriptionID()
		return sid != "" && sid != first
	}, waitFor, tick)
	assert.Eventually(t, func() bool { return m.State() == Active }, waitFor, tick)
	assert.NoError(t, m.Err())
	assert.NotEmpty(t, hook.Messages(logrus.WarnLevel))
}

func TestManagerFailure(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()

	failures := make(chan error, 1)
	opts := fastOptions()
	opts.OnFailure = func(err error) { failures <- err }

	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), opts)
	m.Subscribe()
	assert.Eventually(t, func() bool { return m.State() == Active }, waitFor, tick)

	d.FailRenewals(http.StatusInternalServerError)

	select {
	case err := <-failures:
		assert.ErrorIs(t, err, upnperr.ErrTransportFailure)
	case <-time.After(waitFor):
		t.Fatal("no failure reported")
	}

	<-m.Done()
	assert.Equal(t, Failed, m.State())
	assert.ErrorIs(t, m.Err(), upnperr.ErrTransportFailure)

	require.NoError(t, m.Unsubscribe())
	assert.Equal(t, Unsubscribed, m.State())
}

func TestManagerInitialSubscribeFailure(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()
	d.FailSubscribes(http.StatusServiceUnavailable)

	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), fastOptions())
	m.Subscribe()
	<-m.Done()

	assert.Equal(t, Failed, m.State())
	var terr *upnperr.TransportError
	require.True(t, errors.As(m.Err(), &terr))
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.NoError(t, m.Unsubscribe())
}

func TestManagerCallbackURLError(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()

	m := NewSubscriptionManager(NewClient(d.EventURL()), func() (string, error) {
		return "", upnperr.ErrNotStarted
	}, fastOptions())
	m.Subscribe()
	<-m.Done()

	assert.ErrorIs(t, m.Err(), upnperr.ErrNotStarted)
	subs, _, _ := d.Counts()
	assert.Zero(t, subs)
	assert.NoError(t, m.Unsubscribe())
}

func TestManagerResumesExistingSID(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()

	resp, err := NewClient(d.EventURL()).Subscribe(context.Background(), "http://127.0.0.1:4000/", time.Minute)
	require.NoError(t, err)

	opts := fastOptions()
	opts.ExistingSID = resp.SID
	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), opts)
	assert.Equal(t, resp.SID, m.SubscriptionID())

	m.Subscribe()
	defer m.Unsubscribe()

	assert.Eventually(t, func() bool {
		_, renewals, _ := d.Counts()
		return renewals >= 1
	}, waitFor, tick)
	subs, _, _ := d.Counts()
	assert.Equal(t, 1, subs)
	assert.Equal(t, resp.SID, m.SubscriptionID())
}

func TestManagerUnsubscribeErrorIsIgnored(t *testing.T) {
	d := upnptest.NewRenderingControl()
	defer d.Close()
	d.FailUnsubscribes(true)

	var shutdowns atomic.Int32
	opts := fastOptions()
	opts.OnShutdown = func() { shutdowns.Add(1) }

	m := NewSubscriptionManager(NewClient(d.EventURL()), StaticURL("http://127.0.0.1:4000/"), opts)
	m.Subscribe()
	assert.Eventually(t, func() bool { return m.State() == Active }, waitFor, tick)

	assert.NoError(t, m.Unsubscribe())
	assert.Empty(t, m.SubscriptionID())
	assert.Equal(t, int32(1), shutdowns.Load())
}

// stallingSubscriber grants long subscriptions and holds every
// UNSUBSCRIBE until release is closed.
type stallingSubscriber struct {
	subscribes    atomic.Int32
	unsubscribing chan struct{}
	release       chan struct{}
}

func newStallingSubscriber() *stallingSubscriber {
	return &stallingSubscriber{
		unsubscribing: make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
}

func (s *stallingSubscriber) Subscribe(ctx context.Context, callbackURL string, timeout time.Duration) (*SubscribeResponse, error) {
	s.subscribes.Add(1)
	return &SubscribeResponse{SID: "uuid:stalling", Timeout: time.Minute}, nil
}

func (s *stallingSubscriber) Resubscribe(ctx context.Context, sid string, timeout time.Duration) (time.Duration, error) {
	return time.Minute, nil
}

func (s *stallingSubscriber) Unsubscribe(ctx context.Context, sid string) error {
	select {
	case s.unsubscribing <- struct{}{}:
	default:
	}
	<-s.release
	return nil
}

func TestManagerSubscribeDuringUnsubscribe(t *testing.T) {
	s := newStallingSubscriber()
	opts := fastOptions()
	opts.UnsubscribeTimeout = waitFor

	m := NewSubscriptionManager(s, StaticURL("http://127.0.0.1:4000/"), opts)
	m.Subscribe()
	require.Eventually(t, func() bool { return m.State() == Active }, waitFor, tick)

	stopped := make(chan error, 1)
	go func() { stopped <- m.Unsubscribe() }()

	select {
	case <-s.unsubscribing:
	case <-time.After(waitFor):
		t.Fatal("UNSUBSCRIBE never sent")
	}

	m.Subscribe()
	assert.ErrorIs(t, m.Unsubscribe(), upnperr.ErrIllegalState)

	close(s.release)
	require.NoError(t, <-stopped)

	time.Sleep(10 * tick)
	assert.Equal(t, int32(1), s.subscribes.Load())
	assert.Equal(t, Unsubscribed, m.State())
	assert.Empty(t, m.SubscriptionID())
	select {
	case <-m.Done():
	default:
		t.Fatal("subscription loop still running after teardown")
	}

	m.Subscribe()
	require.Eventually(t, func() bool { return m.State() == Active }, waitFor, tick)
	assert.Equal(t, "uuid:stalling", m.SubscriptionID())
	assert.Equal(t, int32(2), s.subscribes.Load())
	require.NoError(t, m.Unsubscribe())
}
