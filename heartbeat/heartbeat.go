// Package heartbeat implements the NetworkHeartbeat Connection: a
// background liveness probe against the validation backend that degrades
// the interlock to ERROR_NETWORK when unreachable and recovers it once the
// backend answers again.
package heartbeat

import (
	"bufio"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

// trackedModes is the set of states NetworkHeartbeat folds into
// current_mode; all others leave current_mode unchanged.
var trackedModes = map[state.State]bool{
	state.Active:           true,
	state.InactiveSoon:     true,
	state.Inactive:         true,
	state.Error:            true,
	state.ErrorConfig:      true,
	state.ErrorNetwork:     true,
	state.ErrorMaintenance: true,
}

var errorModes = map[state.State]bool{
	state.Error:            true,
	state.ErrorConfig:      true,
	state.ErrorNetwork:     true,
	state.ErrorMaintenance: true,
}

var probeModes = map[state.State]bool{
	state.Inactive:         true,
	state.Error:            true,
	state.ErrorNetwork:     true,
	state.ErrorMaintenance: true,
}

// NetworkHeartbeat is both a consumer (tracks current_mode) and a producer
// (runs its own probe loop), making it a "mixed" Connection.
type NetworkHeartbeat struct {
	name     string
	queryURL string
	queue    *queue.Queue
	logger   *slog.Logger
	client   *http.Client

	mu          sync.Mutex
	currentMode state.State
}

// New constructs a NetworkHeartbeat probing queryURL.
func New(name, queryURL string, q *queue.Queue, logger *slog.Logger) *NetworkHeartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	return &NetworkHeartbeat{
		name:        name,
		queryURL:    queryURL,
		queue:       q,
		logger:      logger,
		client:      &http.Client{Timeout: 10 * time.Second},
		currentMode: state.PowerUp,
	}
}

// Update folds tracked states into current_mode; everything else is a no-op.
func (h *NetworkHeartbeat) Update(msg message.Message) error {
	if !trackedModes[msg.State] {
		return nil
	}
	h.mu.Lock()
	h.currentMode = msg.State
	h.mu.Unlock()
	return nil
}

func (h *NetworkHeartbeat) mode() state.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentMode
}

// Run is the NetworkHeartbeat's background producer loop.
func (h *NetworkHeartbeat) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		mode := h.mode()
		switch {
		case probeModes[mode]:
			if h.probe() {
				if mode != state.Inactive {
					h.queue.Enqueue(message.New(state.Inactive, h.name))
				}
				if h.sleep(stop, 30*time.Second) {
					return
				}
			} else {
				if !errorModes[mode] {
					h.queue.Enqueue(message.New(state.ErrorNetwork, h.name))
				}
				if h.sleep(stop, time.Second) {
					return
				}
			}
		default:
			if h.sleep(stop, 500*time.Millisecond) {
				return
			}
		}
	}
}

// sleep waits for d or until stop closes, reporting whether stop fired.
func (h *NetworkHeartbeat) sleep(stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stop:
		return true
	case <-t.C:
		return false
	}
}

// probe reports whether the backend answered with parseable JSON.
func (h *NetworkHeartbeat) probe() bool {
	url, err := renderURL(h.queryURL, map[string]string{"tool_id": "", "badge_id": ""})
	if err != nil {
		h.logger.Warn("heartbeat: bad url template", "name", h.name, "error", err)
		return false
	}

	resp, err := h.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	line, err := readOneLine(resp.Body)
	if err != nil {
		return false
	}
	var reply map[string]interface{}
	return json.Unmarshal([]byte(line), &reply) == nil
}

func renderURL(tmplStr string, params map[string]string) (string, error) {
	t, err := template.New("url").Parse(tmplStr)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func readOneLine(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
