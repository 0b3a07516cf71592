// Package webservice implements the webservice:connection validator: an
// HTTP-backed Connection that asynchronously resolves a routed state into
// a follow-up state by GETting a templated URL and matching the JSON
// reply against each candidate state's conditions.
package webservice

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/heartbeat"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

// Settings holds the webservice:connection entry's non-state keys.
type Settings struct {
	HeartbeatMonitor string `json:"heartbeat_monitor,omitempty"`
}

// WebService is the HTTP-backed validator Connection.
type WebService struct {
	name   string
	toolID string
	routes map[state.State]config.ValidatorAction
	queue  *queue.Queue
	logger *slog.Logger
	client *http.Client

	mu         sync.Mutex
	savedReply map[string]interface{}
}

// New builds a WebService from its per-state routing table. If settings
// names a heartbeat_monitor URL, New also returns a NetworkHeartbeat the
// caller should register as its own Connection (it is a independent
// Producer/consumer pair, not WebService's responsibility to run).
func New(name, toolID string, routes map[state.State]config.ValidatorAction, settings Settings, q *queue.Queue, logger *slog.Logger) (*WebService, *heartbeat.NetworkHeartbeat) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &WebService{
		name:   name,
		toolID: toolID,
		routes: routes,
		queue:  q,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	var hb *heartbeat.NetworkHeartbeat
	if settings.HeartbeatMonitor != "" {
		hb = heartbeat.New(name+".heartbeat", settings.HeartbeatMonitor, q, logger)
	}
	w.Update(message.New(state.PowerUp, "startup"))
	return w, hb
}

// Update schedules an independent asynchronous task so the interlock's
// main loop never waits on an HTTP round trip.
func (w *WebService) Update(msg message.Message) error {
	action, ok := w.routes[msg.State]
	if !ok {
		return nil
	}
	go w.resolve(action, msg)
	return nil
}

func (w *WebService) resolve(action config.ValidatorAction, msg message.Message) {
	params := msg.Params()
	params["tool_id"] = w.toolID

	w.mu.Lock()
	for k, v := range w.savedReply {
		if _, exists := params[k]; !exists {
			params[k] = fmt.Sprint(v)
		}
	}
	w.mu.Unlock()

	url, err := renderURL(action.URLTemplate, params)
	if err != nil {
		w.logger.Debug("webservice: url template error, swallowed", "name", w.name, "error", err)
		return
	}

	resp, err := w.client.Get(url)
	if err != nil {
		w.logger.Warn("webservice: request failed", "name", w.name, "error", err)
		w.queue.Enqueue(message.New(state.ErrorNetwork, w.name))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.logger.Warn("webservice: non-2xx response", "name", w.name, "status", resp.StatusCode)
		w.queue.Enqueue(message.New(state.ErrorNetwork, w.name))
		return
	}

	line, err := readOneLine(resp.Body)
	if err != nil {
		w.logger.Warn("webservice: could not read response body", "name", w.name, "error", err)
		w.queue.Enqueue(message.New(state.ErrorNetwork, w.name))
		return
	}

	var reply map[string]interface{}
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		w.logger.Warn("webservice: invalid JSON reply", "name", w.name, "error", err)
		return
	}

	if action.SaveReply {
		w.mu.Lock()
		w.savedReply = reply
		w.mu.Unlock()
	}

	if next, ok := bestMatch(action.Conditions, reply); ok {
		w.queue.Enqueue(message.New(next, w.name))
	}
}

// bestMatch considers only conditions every one of whose fields matches
// the reply, then picks the unique such condition with the most fields
// (must be > 0); ties report ok=false. A condition that only partially
// matches the reply is disqualified entirely, not scored by its partial
// count. Condition keys carry the same "<state>:when" suffix as the
// hardcoded-RFID routing table.
func bestMatch(conditions map[string]map[string]interface{}, reply map[string]interface{}) (state.State, bool) {
	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best state.State
	bestCount := 0
	tie := false
	for _, candidate := range keys {
		resultState, ok := parseWhenKey(candidate)
		if !ok {
			continue
		}
		fields := conditions[candidate]
		fullMatch := true
		for field, expected := range fields {
			v, ok := reply[field]
			if !ok || fmt.Sprint(v) != fmt.Sprint(expected) {
				fullMatch = false
				break
			}
		}
		if !fullMatch || len(fields) == 0 {
			continue
		}
		count := len(fields)
		switch {
		case count > bestCount:
			bestCount = count
			best = resultState
			tie = false
		case count == bestCount:
			tie = true
		}
	}
	if best == "" || tie {
		return "", false
	}
	return best, true
}

// parseWhenKey splits a "<state>:when" condition key into its State.
func parseWhenKey(key string) (state.State, bool) {
	const suffix = ":when"
	if len(key) <= len(suffix) || key[len(key)-len(suffix):] != suffix {
		return "", false
	}
	return state.State(key[:len(key)-len(suffix)]), true
}

// renderURL substitutes params into tmplStr by named placeholder. Missing
// placeholders resolve to the empty string rather than erroring, since
// Execute is given a map: Go's template engine returns a map's zero value
// for an absent key instead of failing, which is what lets unknown
// placeholders be swallowed quietly rather than fail the render.
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
