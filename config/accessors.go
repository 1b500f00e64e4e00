package config

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/controlpoint"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/events"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"github.com/sirupsen/logrus"
)

func (cfg *Config) GetString(def string, path ...string) string {
	v, err := cfg.GetValue(path)
	if err != nil || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func (cfg *Config) GetBool(def bool, path ...string) bool {
	v, _ := cfg.GetValue(path)
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func (cfg *Config) GetInt(def int, path ...string) int {
	v, _ := cfg.GetValue(path)
	switch n := v.(type) {
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// GetDuration reads a duration written either as a Go duration string
// ("90s", "5m") or as a number of seconds.
func (cfg *Config) GetDuration(def time.Duration, path ...string) time.Duration {
	v, _ := cfg.GetValue(path)
	switch d := v.(type) {
	case int:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	}
	return def
}

func (cfg *Config) GetStringMap(path ...string) map[string]string {
	v, _ := cfg.GetValue(path)
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}

// ControlPointOptions reads the controlpoint section. Runtime fields are
// left for the caller to fill.
func (cfg *Config) ControlPointOptions() controlpoint.Options {
	o := controlpoint.DefaultOptions()
	o.ValidateArguments = cfg.GetBool(o.ValidateArguments, "controlpoint", "validate_arguments")
	o.AdvancedTypecasting = cfg.GetBool(o.AdvancedTypecasting, "controlpoint", "advanced_typecasting")
	o.CallOptions.Timeout = cfg.GetDuration(0, "controlpoint", "call_timeout")
	o.CallOptions.Headers = cfg.GetStringMap("controlpoint", "call_headers")
	return o
}

func (cfg *Config) ManagerOptions() events.ManagerOptions {
	d := events.DefaultManagerOptions()
	return events.ManagerOptions{
		RequestedTimeout:     cfg.GetDuration(d.RequestedTimeout, "subscription", "requested_timeout"),
		ResubscriptionBuffer: cfg.GetDuration(d.ResubscriptionBuffer, "subscription", "resubscription_buffer"),
		ExistingSID:          cfg.GetString("", "subscription", "existing_sid"),
		PollInterval:         cfg.GetDuration(d.PollInterval, "subscription", "poll_interval"),
		UnsubscribeTimeout:   cfg.GetDuration(d.UnsubscribeTimeout, "subscription", "unsubscribe_timeout"),
	}
}

func (cfg *Config) ListenerOptions() events.ListenerOptions {
	return events.ListenerOptions{
		Address:       cfg.GetString("", "listener", "address"),
		Port:          cfg.GetInt(0, "listener", "port"),
		AdvertiseHost: cfg.GetString("", "listener", "advertise_host"),
	}
}

func (cfg *Config) EventConfig() controlpoint.EventConfig {
	return controlpoint.EventConfig{
		Listener: cfg.ListenerOptions(),
		Manager:  cfg.ManagerOptions(),
	}
}

// Logger builds the logger described by the log section, writing to w.
func (cfg *Config) Logger(w io.Writer) (*logrus.Logger, error) {
	return pmolog.NewLogger(
		cfg.GetString("warning", "log", "level"),
		cfg.GetString("text", "log", "format"),
		w)
}
