package upnptest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/soap"
	"github.com/beevik/etree"
	"github.com/google/uuid"
)

const (
	methodSubscribe   = "SUBSCRIBE"
	methodUnsubscribe = "UNSUBSCRIBE"

	EventNamespace = "urn:schemas-upnp-org:event-1-0"
)

// Subscription is a subscriber known to the device.
type Subscription struct {
	SID      string
	Callback string
	Timeout  string
	Seq      uint32
}

// GenaRequest is a SUBSCRIBE or UNSUBSCRIBE request as received.
type GenaRequest struct {
	Method string
	Header http.Header
}

// Requests returns every GENA request received so far.
func (d *Device) Requests() []GenaRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.requests)
}

func (d *Device) Subscriptions() []Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Subscription, 0, len(d.subs))
	for _, s := range d.subs {
		out = append(out, *s)
	}
	return out
}

func (d *Device) Subscription(sid string) (Subscription, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.subs[sid]
	if !ok {
		return Subscription{}, false
	}
	return *s, true
}

// ForgetSubscriptions drops every subscription, as a rebooted device would.
// Later renewals get 412 Precondition Failed.
func (d *Device) ForgetSubscriptions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = make(map[string]*Subscription)
}

// FailSubscribes answers new subscriptions with status; 0 restores normal
// behavior.
func (d *Device) FailSubscribes(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribeStatus = status
}

// FailRenewals answers renewals with status; 0 restores normal behavior.
func (d *Device) FailRenewals(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renewStatus = status
}

// FailUnsubscribes makes UNSUBSCRIBE answer 500.
func (d *Device) FailUnsubscribes(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unsubscribeFail = fail
}

// OmitSID removes the SID header from subscription responses.
func (d *Device) OmitSID(omit bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.omitSID = omit
}

// SetTimeoutHeader forces the TIMEOUT response header; an empty value
// removes it. By default the requested timeout is granted.
func (d *Device) SetTimeoutHeader(h string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeoutHeader = &h
}

// Counts returns the number of subscribes, renewals and unsubscribes
// accepted.
func (d *Device) Counts() (subscribes, renewals, unsubscribes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subscribeCount, d.renewCount, d.unsubscribeCount
}

func (d *Device) handleEventSub(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("SID")
	timeout := r.Header.Get("TIMEOUT")
	callback := r.Header.Get("CALLBACK")
	nt := r.Header.Get("NT")

	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, GenaRequest{Method: r.Method, Header: r.Header.Clone()})

	switch r.Method {
	case methodSubscribe:
		if sid == "" {
			if d.subscribeStatus != 0 {
				w.WriteHeader(d.subscribeStatus)
				return
			}
			if callback == "" || nt != "upnp:event" {
				http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
				return
			}
			sid = "uuid:" + uuid.New().String()
			d.subs[sid] = &Subscription{SID: sid, Callback: strings.Trim(strings.TrimSpace(callback), "<>"), Timeout: timeout}
			d.subscribeCount++
			d.logger.Infof("🔔 New subscription: SID=%s, Callback=%s, Timeout=%s", sid, callback, timeout)
		} else {
			if callback != "" || nt != "" {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			if d.renewStatus != 0 {
				w.WriteHeader(d.renewStatus)
				return
			}
			sub, ok := d.subs[sid]
			if !ok {
				http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
				return
			}
			sub.Timeout = timeout
			d.renewCount++
			d.logger.Infof("♻️ Renew subscription: SID=%s, Timeout=%s", sid, timeout)
		}

		if !d.omitSID {
			w.Header().Set("SID", sid)
		}
		if d.timeoutHeader != nil {
			timeout = *d.timeoutHeader
		}
		if timeout != "" {
			w.Header().Set("TIMEOUT", timeout)
		}
		w.WriteHeader(http.StatusOK)

	case methodUnsubscribe:
		if d.unsubscribeFail {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if _, ok := d.subs[sid]; !ok {
			http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
			return
		}
		delete(d.subs, sid)
		d.unsubscribeCount++
		d.logger.Infof("❌ Unsubscribe SID=%s", sid)
		w.WriteHeader(http.StatusOK)
	}
}

// BuildPropertySet renders a GENA property set, one property per variable.
func BuildPropertySet(vars ...soap.Arg) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	set := doc.CreateElement("e:propertyset")
	set.CreateAttr("xmlns:e", EventNamespace)
	for _, v := range vars {
		set.CreateElement("e:property").CreateElement(v.Name).SetText(v.Value)
	}
	data, _ := doc.WriteToBytes()
	return data
}

// Notify sends a NOTIFY carrying vars to the subscriber sid and returns the
// HTTP status it answered.
func (d *Device) Notify(ctx context.Context, sid string, vars ...soap.Arg) (int, error) {
	d.mu.Lock()
	sub, ok := d.subs[sid]
	if !ok {
		d.mu.Unlock()
		return 0, fmt.Errorf("no subscription %s", sid)
	}
	callback := sub.Callback
	seq := sub.Seq
	sub.Seq++
	d.mu.Unlock()

	return SendNotify(ctx, callback, sid, seq, BuildPropertySet(vars...))
}

// SendNotify posts a raw NOTIFY body to callback.
func SendNotify(ctx context.Context, callback, sid string, seq uint32, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "NOTIFY", callback, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("NT", "upnp:event")
	req.Header.Set("NTS", "upnp:propchange")
	req.Header.Set("SID", sid)
	req.Header.Set("SEQ", fmt.Sprintf("%d", seq))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
