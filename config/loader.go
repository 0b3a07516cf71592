package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Load parses a Config from a local JSON file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// LoadRemoteOrLocal fetches a per-tool Config from a configsvc-style
// remote endpoint, falling back to a local file if the remote is
// unreachable or errors: try the shop's command-and-control server first,
// and keep the controller operable from its last-known-good local copy
// when it can't be reached.
func LoadRemoteOrLocal(baseURL, toolID, localPath string) (*Config, error) {
	if c, err := loadRemote(baseURL, toolID); err == nil {
		return c, nil
	}
	return Load(localPath)
}

func loadRemote(baseURL, toolID string) (*Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/config/"+toolID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("config: remote config server returned %s", resp.Status)
	}
	var c Config
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
