package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// hugotBatchMax bounds the number of texts per pipeline run.
const hugotBatchMax = 10

// ErrModelNotFound indicates no usable model exists in the model directory.
var ErrModelNotFound = errors.New("embedding model not found")

// hugotRuntime holds the process-wide session and pipeline. ONNX Runtime
// allows one active session per process and is not thread-safe, so the
// mutex serializes initialization and inference.
var hugotRuntime struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	modelDir string
}

// HugotEmbedding runs a local sentence-transformer model through hugot.
//
// The model directory is either a model itself (it contains tokenizer.json)
// or a parent holding exactly such a model in a subdirectory.
type HugotEmbedding struct {
	modelDir string
}

// NewHugotEmbedding creates a HugotEmbedding for the model in modelDir.
// The model is loaded on first use.
func NewHugotEmbedding(modelDir string) *HugotEmbedding {
	return &HugotEmbedding{modelDir: modelDir}
}

// Model returns an identifier derived from the model directory name.
func (h *HugotEmbedding) Model() string {
	path, err := h.modelPath()
	if err != nil {
		return "hugot:" + filepath.Base(h.modelDir)
	}
	return "hugot:" + filepath.Base(path)
}

// Available reports whether a usable model exists on disk.
func (h *HugotEmbedding) Available() bool {
	_, err := h.modelPath()
	return err == nil
}

// Capacity returns the maximum number of texts per Embed call.
func (h *HugotEmbedding) Capacity() int { return hugotBatchMax }

// Embed generates L2-normalized embeddings for the given texts.
func (h *HugotEmbedding) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	texts := req.Texts()
	if len(texts) == 0 {
		return NewEmbeddingResponse([][]float64{}, NewUsage(0, 0)), nil
	}
	if len(texts) > hugotBatchMax {
		return EmbeddingResponse{}, fmt.Errorf("embed: %d texts exceeds capacity %d", len(texts), hugotBatchMax)
	}
	if err := ctx.Err(); err != nil {
		return EmbeddingResponse{}, err
	}

	hugotRuntime.mu.Lock()
	defer hugotRuntime.mu.Unlock()

	if err := h.initializeLocked(); err != nil {
		return EmbeddingResponse{}, fmt.Errorf("initialize hugot: %w", err)
	}

	result, err := hugotRuntime.pipeline.RunPipeline(texts)
	if err != nil {
		return EmbeddingResponse{}, fmt.Errorf("run embedding pipeline: %w", err)
	}

	embeddings := make([][]float64, len(result.Embeddings))
	for i, vec32 := range result.Embeddings {
		vec64 := make([]float64, len(vec32))
		for j, v := range vec32 {
			vec64[j] = float64(v)
		}
		embeddings[i] = vec64
	}

	return NewEmbeddingResponse(embeddings, NewUsage(0, 0)), nil
}

// Close releases the shared session if this embedding owns it.
func (h *HugotEmbedding) Close() error {
	hugotRuntime.mu.Lock()
	defer hugotRuntime.mu.Unlock()

	if hugotRuntime.session == nil {
		return nil
	}
	err := hugotRuntime.session.Destroy()
	hugotRuntime.session = nil
	hugotRuntime.pipeline = nil
	hugotRuntime.modelDir = ""
	return err
}

func (h *HugotEmbedding) initializeLocked() error {
	path, err := h.modelPath()
	if err != nil {
		return err
	}
	if hugotRuntime.pipeline != nil {
		if hugotRuntime.modelDir != path {
			return fmt.Errorf("hugot session already loaded with %s", hugotRuntime.modelDir)
		}
		return nil
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: path,
		Name:      "affinity-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	hugotRuntime.session = session
	hugotRuntime.pipeline = pipeline
	hugotRuntime.modelDir = path
	return nil
}

// modelPath resolves the directory holding tokenizer.json.
func (h *HugotEmbedding) modelPath() (string, error) {
	if h.modelDir == "" {
		return "", fmt.Errorf("%w: no model directory configured", ErrModelNotFound)
	}
	if hasTokenizer(h.modelDir) {
		return h.modelDir, nil
	}

	entries, err := os.ReadDir(h.modelDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelNotFound, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(h.modelDir, entry.Name())
		if hasTokenizer(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no tokenizer.json under %s", ErrModelNotFound, h.modelDir)
}

func hasTokenizer(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "tokenizer.json"))
	return err == nil
}

var _ Embedder = (*HugotEmbedding)(nil)
