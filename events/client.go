// Package events implements the GENA side of a UPnP control point: the
// SUBSCRIBE / UNSUBSCRIBE client, the subscription manager keeping a
// subscription alive, the NOTIFY listener and the property set parser.
package events

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"github.com/sirupsen/logrus"
)

const (
	MethodSubscribe   = "SUBSCRIBE"
	MethodUnsubscribe = "UNSUBSCRIBE"
	MethodNotify      = "NOTIFY"
)

var timeoutPattern = regexp.MustCompile(`(?i)Second-(\d+)`)

// SubscribeResponse carries what a device granted.
type SubscribeResponse struct {
	SID     string
	Timeout time.Duration
}

// Subscriber is the GENA transport used by SubscriptionManager.
type Subscriber interface {
	Subscribe(ctx context.Context, callbackURL string, timeout time.Duration) (*SubscribeResponse, error)
	Resubscribe(ctx context.Context, sid string, timeout time.Duration) (time.Duration, error)
	Unsubscribe(ctx context.Context, sid string) error
}

// Client sends GENA requests to one event subscription URL.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(cl *Client) {
		cl.logger = pmolog.OrDiscard(l)
	}
}

func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		logger:     pmolog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Subscribe opens a new subscription delivering events to callbackURL.
func (c *Client) Subscribe(ctx context.Context, callbackURL string, timeout time.Duration) (*SubscribeResponse, error) {
	resp, err := c.do(ctx, MethodSubscribe, map[string]string{
		"CALLBACK": "<" + callbackURL + ">",
		"NT":       "upnp:event",
		"TIMEOUT":  timeoutHeader(timeout),
	})
	if err != nil {
		return nil, err
	}

	sid := strings.TrimSpace(resp.Header.Get("SID"))
	if sid == "" {
		return nil, upnperr.ErrMissingSubscriptionID
	}
	granted, err := c.grantedTimeout(resp.Header, timeout)
	if err != nil {
		return nil, err
	}

	c.logger.Infof("🔔 Subscribed to %s: SID=%s, timeout=%v", c.endpoint, sid, granted)
	return &SubscribeResponse{SID: sid, Timeout: granted}, nil
}

// Resubscribe renews sid. A 412 Precondition Failed or 404 answer means the
// device no longer knows the subscription; the error then also matches
// upnperr.ErrSubscriptionLost. Any other non-2xx answer, a 500 from a
// rebooting device for instance, does not, and a SubscriptionManager stops
// on it: watch its Err and Done.
func (c *Client) Resubscribe(ctx context.Context, sid string, timeout time.Duration) (time.Duration, error) {
	resp, err := c.do(ctx, MethodSubscribe, map[string]string{
		"SID":     sid,
		"TIMEOUT": timeoutHeader(timeout),
	})
	if err != nil {
		return 0, err
	}

	granted, err := c.grantedTimeout(resp.Header, timeout)
	if err != nil {
		return 0, err
	}
	c.logger.Infof("♻️ Renewed subscription %s: timeout=%v", sid, granted)
	return granted, nil
}

func (c *Client) Unsubscribe(ctx context.Context, sid string) error {
	if _, err := c.do(ctx, MethodUnsubscribe, map[string]string{"SID": sid}); err != nil {
		return err
	}
	c.logger.Infof("❌ Unsubscribed %s", sid)
	return nil
}

// do sends a body-less GENA request. Header names are written exactly as
// given. The returned response body is already drained and closed.
func (c *Client) do(ctx context.Context, method string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	for k, v := range headers {
		req.Header[k] = []string{v}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", upnperr.ErrTransportFailure, method, c.endpoint, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		terr := &upnperr.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
		if _, renewal := headers["SID"]; renewal && method == MethodSubscribe &&
			(resp.StatusCode == http.StatusPreconditionFailed || resp.StatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %w", upnperr.ErrSubscriptionLost, terr)
		}
		return nil, terr
	}
	return resp, nil
}

// grantedTimeout reads the TIMEOUT response header. An absent header or
// "Second-infinite" falls back to the requested timeout.
func (c *Client) grantedTimeout(h http.Header, requested time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(h.Get("TIMEOUT"))
	if raw == "" || strings.EqualFold(raw, "Second-infinite") {
		c.logger.Warnf("⚠️ No usable TIMEOUT in response from %s (%q), assuming %v", c.endpoint, raw, requested)
		return requested, nil
	}
	m := timeoutPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", upnperr.ErrMalformedTimeout, raw)
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", upnperr.ErrMalformedTimeout, raw, err)
	}
	return time.Duration(seconds) * time.Second, nil
}

func timeoutHeader(timeout time.Duration) string {
	return fmt.Sprintf("Second-%d", int(timeout/time.Second))
}
