package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/sixseven/internal/app"
	"github.com/ayusman/sixseven/internal/config"
	"github.com/ayusman/sixseven/internal/gesture"
	"github.com/ayusman/sixseven/internal/metrics"
	"github.com/ayusman/sixseven/internal/server"
	"github.com/ayusman/sixseven/internal/store"
	"github.com/ayusman/sixseven/internal/tray"
)

func main() {
	fmt.Println("sixseven - two-hand seesaw gesture detector")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	m := metrics.NewManager()

	a := app.New(app.ConfigFrom(cfg, st, m))
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start detection: %v", err)
	}
	defer a.Stop()

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		State:     a,
		Plugins:   a.PluginManager(),
		Metrics:   m.Handler(),
	})

	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		serveErr <- srv.ListenAndServe(cfg.Addr)
	}()

	if cfg.Tray {
		runTray(ctx, a, uiURL(cfg.Addr), serveErr)
		return
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down")
	case err := <-serveErr:
		log.Printf("Server failed: %v", err)
	}
}

// runTray blocks on the menu bar loop, which must own the main goroutine.
func runTray(ctx context.Context, a *app.App, url string, serveErr <-chan error) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnOpenUI(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open %s: %v", url, err)
		}
	})

	go func() {
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			log.Printf("Server failed: %v", err)
		}
		t.Quit()
	}()

	go followState(a, t)

	t.Run()
}

// followState mirrors pipeline states into the tray until the pipeline stops.
func followState(a *app.App, t *tray.Tray) {
	states := a.Subscribe()
	defer a.Unsubscribe(states)

	var prev gesture.DetectionState
	for state := range states {
		if state.Detected && !prev.Detected {
			t.SetLastDetection(time.Now())
		}
		if state.Message != prev.Message || state.Detected != prev.Detected {
			t.SetState(state)
		}
		prev = state
	}
}

func uiURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.Command(name, url).Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
