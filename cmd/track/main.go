// track: local camera tracking.
// Opens a webcam with OpenCV, runs the tracking engine on every frame
// and prints one line per frame (JSON lines with -json).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/config"
	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/engine"
	"github.com/zhuhuilin/go-eyetrack/pkg/protocol"
)

var (
	camera   = flag.Int("camera", 0, "camera index")
	backend  = flag.String("backend", "", "detector backend: auto, yolo, yunet, haar")
	variant  = flag.String("variant", "", "YOLO model variant: n, s, m")
	modelDir = flag.String("model-dir", "", "model directory (overrides EYETRACK_MODEL_DIR)")
	frames   = flag.Int("frames", 0, "stop after N frames (0 = run until interrupted)")
	jsonOut  = flag.Bool("json", false, "print results as JSON lines")
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
	if *modelDir != "" {
		cfg.ModelPaths = []string{*modelDir}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *variant != "" {
		cfg.YOLOVariant = *variant
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	cam, err := gocv.OpenVideoCapture(*camera)
	if err != nil {
		log.Error("camera open failed", "camera", *camera, "error", err)
		os.Exit(1)
	}
	defer cam.Close()
	if !cam.IsOpened() {
		log.Error("camera not opened", "camera", *camera)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	img := gocv.NewMat()
	defer img.Close()

	enc := json.NewEncoder(os.Stdout)

	var n uint64
	for *frames == 0 || n < uint64(*frames) {
		select {
		case <-quit:
			return
		default:
		}

		if ok := cam.Read(&img); !ok || img.Empty() {
			continue
		}
		n++

		start := time.Now()
		res, err := eng.ProcessFrame(img)
		if err != nil {
			log.Error("process frame failed", "error", err)
			continue
		}
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		if *jsonOut {
			enc.Encode(protocol.ResultData(res, n, elapsed))
			continue
		}
		printResult(n, res, elapsed)
	}
}

func printResult(n uint64, res engine.Result, ms float64) {
	if !res.FaceDetected {
		fmt.Printf("frame %4d  no face  (%.1f ms)\n", n, ms)
		return
	}

	flags := ""
	if res.EyesFocused {
		flags += " focused"
	}
	if res.HeadMoving {
		flags += " head-moving"
	}
	if res.ShouldersMoving {
		flags += " shoulders-moving"
	}

	fmt.Printf("frame %4d  %s  dist %5.1f cm  gaze (%+.2f, %+.2f)  pose (%+5.1f, %+5.1f, %+5.1f) deg%s  (%.1f ms)\n",
		n, res.Backend, res.FaceDistanceCm,
		res.GazeAngle.X, res.GazeAngle.Y,
		res.HeadPitchDeg, res.HeadYawDeg, res.HeadRollDeg,
		flags, ms)
}
