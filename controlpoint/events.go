package controlpoint

import (
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/events"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
)

// EventConfig tunes the listener and the subscription manager created by
// OnEvent.
type EventConfig struct {
	Listener events.ListenerOptions `yaml:"listener"`
	Manager  events.ManagerOptions  `yaml:"subscription"`
}

// AddEventCallback subscribes to the service events, delivered to the URL
// returned by callbackURL, and returns the running manager.
func (cp *ControlPoint) AddEventCallback(callbackURL events.URLProvider, opts events.ManagerOptions) *events.SubscriptionManager {
	if opts.Logger == nil {
		opts.Logger = cp.logger
	}
	m := events.NewSubscriptionManager(cp.events, callbackURL, opts)
	m.Subscribe()
	return m
}

// OnEvent starts a NOTIFY listener and a subscription delivering to it.
// Every event goes first to cfg.Listener.Callback when set, then to
// callback. Unsubscribing the returned manager shuts the listener down,
// after cfg.Manager.OnShutdown has run.
func (cp *ControlPoint) OnEvent(callback events.Callback, cfg EventConfig) (*events.SubscriptionManager, error) {
	if callback == nil {
		return nil, fmt.Errorf("%w: nil event callback", upnperr.ErrInvalidArgument)
	}

	lopts := cfg.Listener
	if lopts.Logger == nil {
		lopts.Logger = cp.logger
	}
	if lopts.Target == "" {
		lopts.Target = cp.eventsEndpoint
	}
	userCallback := lopts.Callback
	lopts.Callback = func(e events.Event) {
		if userCallback != nil {
			userCallback(e)
		}
		callback(e)
	}
	listener := events.NewListener(lopts)

	mopts := cfg.Manager
	userShutdown := mopts.OnShutdown
	mopts.OnShutdown = func() {
		if userShutdown != nil {
			userShutdown()
		}
		if err := listener.Shutdown(); err != nil {
			cp.logger.Warnf("⚠️ Event listener shutdown: %v", err)
		}
	}

	return cp.AddEventCallback(listener.Listen, mopts), nil
}
