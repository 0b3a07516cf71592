// Command interlockd is the per-tool daemon: it loads a Config, builds
// every configured Connection, and runs the Interlock's event loop until
// signaled to stop.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	slogenv "github.com/cbrewster/slog-env"

	"github.com/dallas-makerspace/interlock/bootstrap"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/interlock"
	"github.com/dallas-makerspace/interlock/lockfile"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/sdnotify"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/interlock/config.json", "path to the local config file")
	remoteURL := flag.String("remote", "", "config service base URL; falls back to -config when unset or unreachable")
	lockPath := flag.String("lock", "/var/lock/interlockd", "single-instance lockfile path")
	consumer := flag.String("gpio-consumer", "interlockd", "GPIO line consumer label")
	flag.Parse()

	slog.SetDefault(slog.New(slogenv.NewHandler(slog.NewTextHandler(os.Stderr, nil))))

	lock, err := lockfile.Acquire(*lockPath)
	if err != nil {
		if err == lockfile.ErrAlreadyRunning {
			slog.Info("another instance is already running; exiting cleanly")
			return 0
		}
		slog.Error("could not acquire lockfile", "error", err)
		return 1
	}
	defer lock.Release()

	toolID, err := config.DeriveToolID()
	if err != nil {
		slog.Error("could not derive tool_id", "error", err)
		return 1
	}

	var cfg *config.Config
	if *remoteURL != "" {
		cfg, err = config.LoadRemoteOrLocal(*remoteURL, toolID, *configPath)
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		slog.Error("could not load config", "error", err)
		return 1
	}
	if cfg.ToolID == "" {
		cfg.ToolID = toolID
	}
	slog.Info("loaded config", "tool_id", cfg.ToolID, "connections", len(cfg.Connections))

	if err := bootstrap.InitHardwareDrivers(); err != nil {
		slog.Warn("periph host init failed; I2C-backed connections will fail to build", "error", err)
	}

	hw, err := bootstrap.NewLiveHardware(*consumer)
	if err != nil {
		slog.Error("could not discover GPIO chip", "error", err)
		return 1
	}
	defer hw.Close()

	q := queue.New(64)
	il := interlock.New(cfg.ToolID, time.Duration(cfg.Timeout*float64(time.Second)), time.Duration(cfg.Warning*float64(time.Second)), q, slog.Default())

	regs, errs := bootstrap.Build(*cfg, hw, q, slog.Default())
	for _, reg := range regs {
		il.Register(reg)
	}

	if !errs.OK() {
		il.LockedOut(errs.Errs())
		sdnotify.Status("ERROR_CONFIG")
		waitForSignal()
		return 1
	}

	il.Start()
	sdnotify.Ready()
	sdnotify.Status("running with %d connections", len(regs))

	go func() {
		waitForSignal()
		il.Stop()
		sdnotify.Stopping()
		os.Exit(0)
	}()

	il.Run()
	return 0
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
