// Command configsrv serves per-tool configuration documents over HTTP, so
// a fleet of interlockd daemons can fetch their config from a central
// shop server instead of a local file.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"

	slogenv "github.com/cbrewster/slog-env"

	"github.com/dallas-makerspace/interlock/configsvc"
	"github.com/dallas-makerspace/interlock/sdnotify"
)

func main() {
	os.Exit(run())
}

func run() int {
	basePath := flag.String("base", "/etc/interlock/configsrv.json", "path to the base config + tool overrides document")
	addr := flag.String("addr", ":8080", "address to listen on")
	flag.Parse()

	slog.SetDefault(slog.New(slogenv.NewHandler(slog.NewTextHandler(os.Stderr, nil))))

	base, err := loadBaseConfig(*basePath)
	if err != nil {
		slog.Error("could not load base config", "error", err)
		return 1
	}
	slog.Info("loaded base config", "tools", len(base.Tools))

	srv := configsvc.NewServer(*base, slog.Default())

	sdnotify.Ready()
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		slog.Error("config service exited", "error", err)
		return 1
	}
	return 0
}

func loadBaseConfig(path string) (*configsvc.BaseConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var base configsvc.BaseConfig
	if err := json.NewDecoder(f).Decode(&base); err != nil {
		return nil, err
	}
	return &base, nil
}
