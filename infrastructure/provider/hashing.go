package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultHashingDimension is the vector length of HashingEmbedder.
const DefaultHashingDimension = 512

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields("a an and are as at be but by for from has have in is it its of on or that the their this to was were will with no not") {
		stopwords[w] = struct{}{}
	}
}

// HashingEmbedder is an offline embedder that maps lowercased word tokens
// into a fixed number of signed buckets with FNV-1a and L2-normalizes the
// result. Identical text always yields an identical vector. Text without
// any non-stopword tokens yields the zero vector.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a HashingEmbedder. A non-positive dimension
// selects DefaultHashingDimension.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

// Model returns an identifier that includes the dimension.
func (h *HashingEmbedder) Model() string {
	return fmt.Sprintf("hashing-fnv1a-%d", h.dimension)
}

// Dimension returns the vector length.
func (h *HashingEmbedder) Dimension() int { return h.dimension }

// Embed returns one vector per text.
func (h *HashingEmbedder) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	if err := ctx.Err(); err != nil {
		return EmbeddingResponse{}, err
	}
	texts := req.Texts()
	embeddings := make([][]float64, len(texts))
	tokens := 0
	for i, text := range texts {
		vec, n := h.vector(text)
		embeddings[i] = vec
		tokens += n
	}
	return NewEmbeddingResponse(embeddings, NewUsage(tokens, tokens)), nil
}

func (h *HashingEmbedder) vector(text string) ([]float64, int) {
	vec := make([]float64, h.dimension)
	count := 0
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[token]; skip {
			continue
		}
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(token))
		sum := hasher.Sum64()

		sign := 1.0
		if sum>>63 == 1 {
			sign = -1.0
		}
		vec[sum%uint64(h.dimension)] += sign
		count++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, count
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, count
}

var _ Embedder = (*HashingEmbedder)(nil)
