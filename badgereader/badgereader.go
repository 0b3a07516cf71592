// Package badgereader implements the abstract RFID badge reader producer:
// polling a line-oriented bus.LineSource, debouncing duplicate scans, and
// translating a line into either a swipe-out or a CHECK_BADGE message
// depending on the reader's last observed persistent state.
package badgereader

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

// debounceWindow is the throttling window against bounce/duplicate scans.
const debounceWindow = time.Second

// Config is the BadgeReader's shared settings, common to every line-source
// variant. CodeSkipChars and CodeLen slice the raw scanned string as
// raw[skip:len] — a literal slice, not raw[skip:skip+len] — matching the
// source's slicing behavior exactly, rather than the alternative reading.
type Config struct {
	CodeSkipChars *int `json:"code_skip_chars,omitempty"`
	CodeLen       *int `json:"code_len,omitempty"`
	CodeBase      int  `json:"code_base,omitempty"`
}

// BadgeReader is the abstract badge-line producer. Concrete
// variants (Serial, Keyboard, InputEvent) differ only in how they build a
// bus.LineSource; they all embed and delegate to BadgeReader.
type BadgeReader struct {
	name   string
	source bus.LineSource
	cfg    Config
	queue  *queue.Queue
	logger *slog.Logger

	mu          sync.Mutex
	lastStatus  state.State
	ignoreUntil map[string]time.Time
}

// New returns a BadgeReader that polls source for lines.
func New(name string, source bus.LineSource, cfg Config, q *queue.Queue, logger *slog.Logger) *BadgeReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeReader{
		name:        name,
		source:      source,
		cfg:         cfg,
		queue:       q,
		logger:      logger,
		lastStatus:  state.Inactive,
		ignoreUntil: make(map[string]time.Time),
	}
}

// Update tracks last_status transitions. Only ACTIVE/INACTIVE
// advance it, and a transition clears the debounce window; INFO_ONLY and
// any other transient state leave it unchanged.
func (b *BadgeReader) Update(msg message.Message) error {
	if msg.State != state.Active && msg.State != state.Inactive {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg.State != b.lastStatus {
		b.ignoreUntil = make(map[string]time.Time)
		b.lastStatus = msg.State
	}
	return nil
}

// Run polls the line source until stop is closed or the source errors out.
func (b *BadgeReader) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		line, err := b.source.ReadLine()
		if err != nil {
			b.logger.Warn("badge reader: line source closed", "name", b.name, "error", err)
			return
		}
		if line == "" {
			continue
		}
		b.handleLine(line)
	}
}

func (b *BadgeReader) handleLine(raw string) {
	if b.debounced(raw) {
		return
	}

	b.mu.Lock()
	lastStatus := b.lastStatus
	b.mu.Unlock()

	if lastStatus == state.Active {
		b.queue.Enqueue(message.New(state.Inactive, "swipe out"))
		return
	}

	decimal, ok := decode(raw, b.cfg)
	if !ok {
		b.logger.Warn("badge reader: could not parse badge", "name", b.name, "raw", raw)
		return
	}
	b.queue.Enqueue(message.New(state.CheckBadge, "BadgeReader").WithBadge(decimal))
}

// debounced evicts expired ignore_until entries, reports whether raw is
// still within its window, and if not records a fresh deadline.
func (b *BadgeReader) debounced(raw string) bool {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, deadline := range b.ignoreUntil {
		if deadline.Before(now) {
			delete(b.ignoreUntil, id)
		}
	}
	if _, seen := b.ignoreUntil[raw]; seen {
		return true
	}
	b.ignoreUntil[raw] = now.Add(debounceWindow)
	return false
}

// decode slices raw as raw[skip:end] (both optional, treated as no bound
// when unset) and parses the slice as an integer in the configured base
// (default 16), rendering it back out as a decimal string.
func decode(raw string, cfg Config) (string, bool) {
	base := cfg.CodeBase
	if base == 0 {
		base = 16
	}
	skip := 0
	if cfg.CodeSkipChars != nil {
		skip = *cfg.CodeSkipChars
	}
	end := len(raw)
	if cfg.CodeLen != nil {
		end = *cfg.CodeLen
	}
	if skip < 0 || end > len(raw) || skip > end {
		return "", false
	}
	n, err := strconv.ParseInt(raw[skip:end], base, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
