// trackd: tracking daemon.
// Accepts JPEG frames over WebSocket, runs the tracking engine on them
// and streams results back to the sender and to /ws/results subscribers.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhuhuilin/go-eyetrack/internal/config"
	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/server"
)

var (
	listenAddr = flag.String("listen", "", "listen address (overrides EYETRACK_LISTEN)")
	modelDir   = flag.String("model-dir", "", "model directory (overrides EYETRACK_MODEL_DIR)")
	backend    = flag.String("backend", "", "detector backend: auto, yolo, yunet, haar")
	variant    = flag.String("variant", "", "YOLO model variant: n, s, m")
	focal      = flag.Float64("focal", 0, "camera focal length in pixels")
)

func main() {
	godotenv.Load()
	log.Init(os.Getenv("LOG_LEVEL"))
	debug.InitFromEnv()
	flag.Parse()

	// Environment first, flags override
	cfg := engine.DefaultConfig()
	cfg.Backend = config.Backend()
	cfg.YOLOVariant = config.YOLOVariant()
	cfg.FocalLengthPx = config.FocalLength(cfg.FocalLengthPx)
	if dir := config.ModelDir(); dir != "" {
		cfg.ModelPaths = []string{dir}
	}

	addr := config.ListenAddr()
	if *listenAddr != "" {
		addr = *listenAddr
	}
	if *modelDir != "" {
		cfg.ModelPaths = []string{*modelDir}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *variant != "" {
		cfg.YOLOVariant = *variant
	}
	if *focal > 0 {
		cfg.FocalLengthPx = *focal
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Error("engine init failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(eng, addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("server failed", "error", err)
		eng.Close()
		os.Exit(1)
	}

	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := eng.Close(); err != nil {
		log.Error("engine close error", "error", err)
	}
}
