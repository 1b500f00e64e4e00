package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
	"github.com/sirupsen/logrus"
)

// Client posts SOAP envelopes to one service control URL.
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

// Invoke posts the action envelope and decodes the response body. A non 2xx
// answer gives a *upnperr.TransportError, with the UPnPError of a SOAP
// fault when one can be read.
func (c *Client) Invoke(ctx context.Context, action string, args *values.Record, soapAction string, opts CallOptions) (*values.Record, error) {
	doc := BuildRequest(action, args, opts)
	payload, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", action, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("SOAPAction", `"`+soapAction+`"`)

	log := c.logger.WithField("action", action)
	log.Debugf("📡 SOAP request to %s:\n%s", c.endpoint, pmolog.PrettyPrintXML(string(payload)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", upnperr.ErrTransportFailure, action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", upnperr.ErrTransportFailure, action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		terr := &upnperr.TransportError{StatusCode: resp.StatusCode, Body: string(data)}
		if f, ok := ParseFault(data); ok {
			terr.UPnPErrorCode = f.Code
			terr.UPnPErrorDescription = f.Description
		}
		log.Warnf("❌ %s failed: %v", action, terr)
		return nil, terr
	}

	log.Debugf("📡 SOAP response:\n%s", pmolog.PrettyPrintXML(string(data)))

	rec, err := ParseResponse(data, opts.AdvancedTypecasting)
	if err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", action, err)
	}
	return rec, nil
}
