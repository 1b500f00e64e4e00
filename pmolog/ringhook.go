package pmolog

import (
	"container/ring"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultRingSize = 1000

// Record is a retained log entry.
type Record struct {
	Level   logrus.Level
	Message string
	Fields  logrus.Fields
}

// RingHook keeps the last entries fired on a logger. It is used to inspect
// what the background subscription loops reported.
type RingHook struct {
	mu     sync.Mutex
	buffer *ring.Ring
	size   int
	count  int
}

func NewRingHook(size int) *RingHook {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingHook{buffer: ring.New(size), size: size}
}

func (h *RingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *RingHook) Fire(entry *logrus.Entry) error {
	fields := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		fields[k] = v
	}

	h.mu.Lock()
	h.buffer.Value = Record{Level: entry.Level, Message: entry.Message, Fields: fields}
	h.buffer = h.buffer.Next()
	if h.count < h.size {
		h.count++
	}
	h.mu.Unlock()
	return nil
}

// Records returns the retained entries, oldest first.
func (h *RingHook) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Record, 0, h.count)
	r := h.buffer.Move(-h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, r.Value.(Record))
		r = r.Next()
	}
	return out
}

// Messages returns the retained messages at level or more severe.
func (h *RingHook) Messages(level logrus.Level) []string {
	var msgs []string
	for _, r := range h.Records() {
		if r.Level <= level {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}

// NewCapturingLogger returns a logger that writes nothing but retains its
// entries in the returned hook.
func NewCapturingLogger(level logrus.Level) (*logrus.Logger, *RingHook) {
	logger := Discard()
	logger.SetLevel(level)
	hook := NewRingHook(0)
	logger.AddHook(hook)
	return logger, hook
}
