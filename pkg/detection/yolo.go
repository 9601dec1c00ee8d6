package detection

import (
	"fmt"
	"image"
	"math"
	"os"

	"gocv.io/x/gocv"

	"github.com/zhuhuilin/go-eyetrack/internal/log"
	"github.com/zhuhuilin/go-eyetrack/pkg/debug"
	"github.com/zhuhuilin/go-eyetrack/pkg/geometry"
)

// DefaultYOLOVariant is the model size tag used when none is set.
const DefaultYOLOVariant = "n"

// YOLOModelFile returns the weight file basename for a variant tag
// (n, s, m, l, x).
func YOLOModelFile(variant string) string {
	if variant == "" {
		variant = DefaultYOLOVariant
	}
	return fmt.Sprintf("yolov5%s-face.onnx", variant)
}

// YOLOConfig holds YOLO backend parameters.
type YOLOConfig struct {
	Variant          string  // model size tag, "" means DefaultYOLOVariant
	ConfidenceThresh float32 // minimum objectness x class score
	NMSThresh        float32 // IoU threshold for suppression
	InputSize        int     // square letterbox side
}

// DefaultYOLOConfig returns production defaults for the nano variant.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		Variant:          DefaultYOLOVariant,
		ConfidenceThresh: 0.45,
		NMSThresh:        0.35,
		InputSize:        640,
	}
}

// YOLOBackend detects faces with a YOLO ONNX net.
type YOLOBackend struct {
	resolver *Resolver
	cfg      YOLOConfig

	net       gocv.Net
	attempted bool
	loaded    bool
	loadErr   error
	attempts  int
}

// NewYOLO creates the backend. The net loads lazily on first use.
func NewYOLO(resolver *Resolver, cfg YOLOConfig) *YOLOBackend {
	if cfg.Variant == "" {
		cfg.Variant = DefaultYOLOVariant
	}
	return &YOLOBackend{resolver: resolver, cfg: cfg}
}

// Kind identifies this backend.
func (b *YOLOBackend) Kind() Kind { return KindYOLO }

// Variant returns the current model variant tag.
func (b *YOLOBackend) Variant() string { return b.cfg.Variant }

// LoadErr returns the load failure, nil while untried or loaded.
func (b *YOLOBackend) LoadErr() error { return b.loadErr }

// LoadAttempts returns how many times a load was attempted. A variant
// switch re-arms the one-shot load, so this climbs past one.
func (b *YOLOBackend) LoadAttempts() int { return b.attempts }

// SetVariant switches the weight file. Changing the tag tears down any
// cached net and re-arms the one-shot load; setting the current tag is
// a no-op.
func (b *YOLOBackend) SetVariant(tag string) {
	if tag == "" {
		tag = DefaultYOLOVariant
	}
	if tag == b.cfg.Variant {
		return
	}
	if b.loaded {
		b.net.Close()
	}
	b.cfg.Variant = tag
	b.attempted = false
	b.loaded = false
	b.loadErr = nil
}

// EnsureLoaded reads the ONNX net on first call. One attempt per
// variant.
func (b *YOLOBackend) EnsureLoaded() bool {
	if b.attempted {
		return b.loaded
	}
	b.attempted = true
	b.attempts++

	path := b.resolver.Resolve(YOLOModelFile(b.cfg.Variant))
	if _, err := os.Stat(path); err != nil {
		b.loadErr = WrapError(KindYOLO, fmt.Errorf("%w: %s", ErrModelNotFound, path))
		log.Warn("yolo model unavailable", "path", path, "variant", b.cfg.Variant)
		return false
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		b.loadErr = WrapError(KindYOLO, fmt.Errorf("%w: %s", ErrModelLoad, path))
		log.Warn("yolo model failed to load", "path", path, "variant", b.cfg.Variant)
		return false
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	b.net = net
	b.loaded = true
	log.Info("yolo model loaded", "path", path, "variant", b.cfg.Variant)
	return true
}

// Detect letterboxes the frame into the net and returns the
// highest-confidence face after non-max suppression.
func (b *YOLOBackend) Detect(gray, frame gocv.Mat) (Detection, bool) {
	if !b.loaded || frame.Empty() {
		return Detection{}, false
	}

	canvas, lb := letterbox(frame, b.cfg.InputSize)
	defer canvas.Close()

	blob := gocv.BlobFromImage(canvas, 1.0/255.0,
		image.Pt(b.cfg.InputSize, b.cfg.InputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	b.net.SetInput(blob, "")
	output := b.net.Forward("")
	defer output.Close()

	det, ok := b.decode(output, lb, frame.Cols(), frame.Rows())
	if ok {
		debug.TrackLog("yolo: face %.2f rect=%+v\n", det.Confidence, det.Rect)
	}
	return det, ok
}

// decode parses v5-layout output rows [cx, cy, w, h, objectness, ...,
// classScore]. Confidence is objectness times the class score in the
// last column; landmark columns, when the model emits them, sit between
// and are ignored.
func (b *YOLOBackend) decode(output gocv.Mat, lb letterboxInfo, frameW, frameH int) (Detection, bool) {
	rows, cols := outputShape(output)
	if rows == 0 || cols < 5 {
		return Detection{}, false
	}
	data, err := output.DataPtrFloat32()
	if err != nil || len(data) < rows*cols {
		return Detection{}, false
	}

	var boxes []image.Rectangle
	var scores []float32

	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		conf := row[4]
		if cols > 5 {
			conf *= row[cols-1]
		}
		if conf < b.cfg.ConfidenceThresh {
			continue
		}

		cx, cy := float64(row[0]), float64(row[1])
		w, h := float64(row[2]), float64(row[3])
		x1 := int((cx - w/2 - lb.padX) / lb.scale)
		y1 := int((cy - h/2 - lb.padY) / lb.scale)
		x2 := int((cx + w/2 - lb.padX) / lb.scale)
		y2 := int((cy + h/2 - lb.padY) / lb.scale)

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		scores = append(scores, conf)
	}
	if len(boxes) == 0 {
		return Detection{}, false
	}

	indices := gocv.NMSBoxes(boxes, scores, b.cfg.ConfidenceThresh, b.cfg.NMSThresh)
	best := -1
	for _, idx := range indices {
		if best == -1 || scores[idx] > scores[best] {
			best = idx
		}
	}
	if best == -1 {
		return Detection{}, false
	}

	rect := geometry.ClampRect(geometry.Rect{
		X: boxes[best].Min.X,
		Y: boxes[best].Min.Y,
		W: boxes[best].Dx(),
		H: boxes[best].Dy(),
	}, frameW, frameH)
	if rect.Empty() {
		return Detection{}, false
	}
	return Detection{Rect: rect, Confidence: float64(scores[best])}, true
}

// Close releases the net.
func (b *YOLOBackend) Close() error {
	if b.loaded {
		b.net.Close()
		b.loaded = false
	}
	return nil
}

// letterboxInfo records the transform applied by letterbox so detected
// boxes can be mapped back to frame coordinates.
type letterboxInfo struct {
	scale float64
	padX  float64
	padY  float64
}

// letterbox resizes frame onto a square canvas preserving aspect ratio,
// padding the borders with neutral gray.
func letterbox(frame gocv.Mat, size int) (gocv.Mat, letterboxInfo) {
	w := frame.Cols()
	h := frame.Rows()

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))
	padX := (size - newW) / 2
	padY := (size - newH) / 2

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(frame, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationLinear)

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(114, 114, 114, 0), size, size, gocv.MatTypeCV8UC3)
	roi := canvas.Region(image.Rect(padX, padY, padX+newW, padY+newH))
	resized.CopyTo(&roi)
	roi.Close()

	return canvas, letterboxInfo{scale: scale, padX: float64(padX), padY: float64(padY)}
}

// outputShape interprets the forward-pass tensor as detection rows by
// columns, tolerating the leading batch dimension.
func outputShape(m gocv.Mat) (rows, cols int) {
	sz := m.Size()
	switch len(sz) {
	case 3:
		return sz[1], sz[2]
	case 2:
		return sz[0], sz[1]
	}
	return 0, 0
}
