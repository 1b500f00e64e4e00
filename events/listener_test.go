package events

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/internal/upnptest"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerLifecycle(t *testing.T) {
	l := NewListener(ListenerOptions{Address: "127.0.0.1"})

	_, err := l.URL()
	assert.ErrorIs(t, err, upnperr.ErrNotStarted)
	assert.ErrorIs(t, l.Shutdown(), upnperr.ErrIllegalState)

	url, err := l.Listen()
	require.NoError(t, err)
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/$`, url)
	assert.True(t, l.Running())

	again, err := l.Listen()
	require.NoError(t, err)
	assert.Equal(t, url, again)

	got, err := l.URL()
	require.NoError(t, err)
	assert.Equal(t, url, got)

	require.NoError(t, l.Shutdown())
	assert.False(t, l.Running())
	assert.ErrorIs(t, l.Shutdown(), upnperr.ErrIllegalState)
}

func TestListenerAdvertiseHost(t *testing.T) {
	l := NewListener(ListenerOptions{Address: "127.0.0.1", AdvertiseHost: "192.0.2.10"})
	url, err := l.Listen()
	require.NoError(t, err)
	defer l.Shutdown()
	assert.Regexp(t, `^http://192\.0\.2\.10:\d+/$`, url)
}

func TestListenerResolvesHostUnlocked(t *testing.T) {
	resolving := make(chan struct{})
	release := make(chan struct{})

	l := NewListener(ListenerOptions{Target: "http://192.0.2.1:49152/evt"})
	l.callbackHost = func(target string) string {
		assert.Equal(t, "http://192.0.2.1:49152/evt", target)
		close(resolving)
		<-release
		return "127.0.0.1"
	}

	listened := make(chan string, 1)
	go func() {
		u, err := l.Listen()
		assert.NoError(t, err)
		listened <- u
	}()
	<-resolving

	queried := make(chan struct{})
	go func() {
		defer close(queried)
		assert.False(t, l.Running())
		_, err := l.URL()
		assert.ErrorIs(t, err, upnperr.ErrNotStarted)
		assert.ErrorIs(t, l.Shutdown(), upnperr.ErrIllegalState)
	}()
	select {
	case <-queried:
	case <-time.After(waitFor):
		t.Fatal("listener state blocked while resolving the callback host")
	}

	close(release)
	u := <-listened
	defer l.Shutdown()
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/$`, u)
	assert.True(t, l.Running())
}

func TestListenerDeliversEvents(t *testing.T) {
	events := make(chan Event, 1)
	l := NewListener(ListenerOptions{
		Address:  "127.0.0.1",
		Callback: func(e Event) { events <- e },
	})
	url, err := l.Listen()
	require.NoError(t, err)
	defer l.Shutdown()

	status, err := upnptest.SendNotify(context.Background(), url, "uuid:1234", 7,
		upnptest.BuildPropertySet(soap.Arg{Name: "Volume", Value: "30"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	e := <-events
	assert.Equal(t, "uuid:1234", e.SID)
	assert.Equal(t, uint32(7), e.Seq)
	assert.Equal(t, map[string]string{"Volume": "30"}, e.Variables)
}

func TestListenerRejectsOtherMethods(t *testing.T) {
	l := NewListener(ListenerOptions{Address: "127.0.0.1"})
	url, err := l.Listen()
	require.NoError(t, err)
	defer l.Shutdown()

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListenerWithoutCallback(t *testing.T) {
	l := NewListener(ListenerOptions{Address: "127.0.0.1"})
	url, err := l.Listen()
	require.NoError(t, err)
	defer l.Shutdown()

	status, err := upnptest.SendNotify(context.Background(), url+"any/path", "uuid:1", 0, []byte("garbage"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}
