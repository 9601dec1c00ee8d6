package detection

import (
	"os"
	"path/filepath"
)

// EnvModelDir is the environment variable consulted first when
// resolving the model directory.
const EnvModelDir = "EYETRACK_MODEL_DIR"

// DefaultModelDir can be baked in at build time, e.g.
//
//	go build -ldflags "-X github.com/zhuhuilin/go-eyetrack/pkg/detection.DefaultModelDir=/opt/eyetrack/models"
var DefaultModelDir string

// Resolver locates model files (ONNX nets, cascade XMLs) by basename.
//
// Search order: the EYETRACK_MODEL_DIR override, the build-time default,
// directories relative to the running executable (models, ../models,
// ../Resources/models), then ./models and ../models. The first candidate
// that exists wins, is canonicalized, and is cached for the resolver's
// lifetime. No candidate existing is not an error: Resolve then returns
// the bare basename and the model load fails naturally downstream.
type Resolver struct {
	candidates []string
	dir        string
	resolved   bool
}

// NewResolver returns a resolver with the standard search paths. The
// environment override is read lazily, at the first resolution attempt.
func NewResolver() *Resolver {
	return &Resolver{}
}

// NewResolverWithPaths returns a resolver that searches only the given
// directories, in order. Used by tests and callers with fixed layouts.
func NewResolverWithPaths(paths ...string) *Resolver {
	return &Resolver{candidates: paths}
}

func defaultCandidates() []string {
	var dirs []string
	if env := os.Getenv(EnvModelDir); env != "" {
		dirs = append(dirs, env)
	}
	if DefaultModelDir != "" {
		dirs = append(dirs, DefaultModelDir)
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs,
			filepath.Join(exeDir, "models"),
			filepath.Join(exeDir, "..", "models"),
			filepath.Join(exeDir, "..", "Resources", "models"),
		)
	}
	return append(dirs, "models", filepath.Join("..", "models"))
}

// Dir returns the resolved model directory, empty when no candidate
// exists. The first call walks the candidates; the verdict is cached.
func (r *Resolver) Dir() string {
	if r.resolved {
		return r.dir
	}
	r.resolved = true

	if r.candidates == nil {
		r.candidates = defaultCandidates()
	}
	for _, c := range r.candidates {
		info, err := os.Stat(c)
		if err != nil || !info.IsDir() {
			continue
		}
		if canon, err := filepath.EvalSymlinks(c); err == nil {
			r.dir = canon
		} else {
			r.dir = c
		}
		break
	}
	return r.dir
}

// Resolve returns the path for a model file basename. It does not stat
// the file itself; a missing file surfaces as a backend load failure.
func (r *Resolver) Resolve(name string) string {
	return filepath.Join(r.Dir(), name)
}
