package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TilePad/tilepad-plugin-obs-studio/internal/config"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/host"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/obs"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/plugin"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/session"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	hostURL := flag.String("host-url", "", "Override host runtime websocket URL")
	pluginID := flag.String("plugin-id", "", "Override plugin id")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if env := os.Getenv("TILEPAD_WS_URL"); env != "" {
		cfg.Host.URL = env
	}
	if *hostURL != "" {
		cfg.Host.URL = *hostURL
	}
	if *pluginID != "" {
		cfg.Host.PluginID = *pluginID
	}

	dialer := session.DialerFunc(func(ctx context.Context, auth session.Auth) (session.Conn, error) {
		return obs.Dial(ctx, auth.Host, auth.Port, auth.Password)
	})
	sess := session.New(dialer,
		time.Duration(cfg.Connection.RetryInterval),
		time.Duration(cfg.Connection.ConnectTimeout))
	defer sess.Close()

	hostClient := host.NewClient(cfg.Host.URL, cfg.Host.PluginID)
	plug := plugin.New(sess, hostClient, cfg.Probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	if err := hostClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to host runtime: %v", err)
	}
	defer hostClient.Close()

	// The plugin lives and dies with the host runtime.
	if err := hostClient.Run(ctx, plug); err != nil && ctx.Err() == nil {
		log.Fatalf("Host runtime connection lost: %v", err)
	}
}
