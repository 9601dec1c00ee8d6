package detection

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// YuNetModelFile is the model basename resolved for the YuNet backend.
const YuNetModelFile = "face_detection_yunet_2023mar.onnx"

// yunetNominalSize is the input size the detector is created with. The
// actual frame size is applied per detect call; OpenCV requires the
// detector input size to match the image it is given.
const yunetNominalSize = 320

// YuNetConfig holds YuNet backend parameters.
type YuNetConfig struct {
	ScoreThresh float32 // minimum face score
	NMSThresh   float32
	TopK        int
}

// DefaultYuNetConfig returns production defaults.
func DefaultYuNetConfig() YuNetConfig {
	return YuNetConfig{
		ScoreThresh: 0.7,
		NMSThresh:   0.3,
		TopK:        5000,
	}
}

// YuNetBackend detects faces with OpenCV's FaceDetectorYN.
type YuNetBackend struct {
	resolver *Resolver
	cfg      YuNetConfig

	detector  gocv.FaceDetectorYN
	attempted bool
	loaded    bool
	loadErr   error
}

// NewYuNet creates the backend. The model loads lazily on first use.
func NewYuNet(resolver *Resolver, cfg YuNetConfig) *YuNetBackend {
	return &YuNetBackend{resolver: resolver, cfg: cfg}
}

// Kind identifies this backend.
func (b *YuNetBackend) Kind() Kind { return KindYuNet }

// LoadErr returns the load failure, nil while untried or loaded.
func (b *YuNetBackend) LoadErr() error { return b.loadErr }

// EnsureLoaded creates the detector on first call. One attempt only.
func (b *YuNetBackend) EnsureLoaded() bool {
	if b.attempted {
		return b.loaded
	}
	b.attempted = true

	path := b.resolver.Resolve(YuNetModelFile)
	if _, err := os.Stat(path); err != nil {
		b.loadErr = WrapError(KindYuNet, fmt.Errorf("%w: %s", ErrModelNotFound, path))
		log.Warn("yunet model unavailable", "path", path)
		return false
	}

	b.detector = gocv.NewFaceDetectorYNWithParams(
		path,
		"", // no config file needed for ONNX
		image.Pt(yunetNominalSize, yunetNominalSize),
		b.cfg.ScoreThresh,
		b.cfg.NMSThresh,
		b.cfg.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)
	b.loaded = true
	log.Info("yunet model loaded", "path", path)
	return true
}

// Detect returns the highest-score face above the score threshold.
func (b *YuNetBackend) Detect(gray, frame gocv.Mat) (Detection, bool) {
	if !b.loaded || frame.Empty() {
		return Detection{}, false
	}

	frameW := frame.Cols()
	frameH := frame.Rows()
	b.detector.SetInputSize(image.Pt(frameW, frameH))

	faces := gocv.NewMat()
	defer faces.Close()
	b.detector.Detect(frame, &faces)

	// Output rows have 15 columns: x, y, w, h, five landmark pairs,
	// then the face score.
	var best Detection
	for r := 0; r < faces.Rows(); r++ {
		score := float64(faces.GetFloatAt(r, 14))
		if score < best.Confidence {
			continue
		}
		rect := geometry.ClampRect(geometry.Rect{
			X: int(faces.GetFloatAt(r, 0)),
			Y: int(faces.GetFloatAt(r, 1)),
			W: int(faces.GetFloatAt(r, 2)),
			H: int(faces.GetFloatAt(r, 3)),
		}, frameW, frameH)
		if rect.Empty() {
			continue
		}
		best = Detection{Rect: rect, Confidence: score}
	}

	if best.Rect.Empty() {
		return Detection{}, false
	}
	debug.TrackLog("yunet: %d face(s), best score %.2f\n", faces.Rows(), best.Confidence)
	return best, true
}

// Close releases the detector resources.
func (b *YuNetBackend) Close() error {
	if b.loaded {
		b.detector.Close()
		b.loaded = false
	}
	return nil
}
