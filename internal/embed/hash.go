package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// hashDimensions is the fixed vector length of the hash provider
const hashDimensions = 256

// HashProvider is a deterministic, in-process embedding provider. It maps
// each text to a normalized bag-of-tokens vector via feature hashing.
//
// It exists so verification works offline and so tests get bit-stable
// vectors: identical texts always embed identically (cosine 1.0), and texts
// sharing no tokens score 0. It is a lexical approximation, not a semantic
// model - use openai or ollama when paraphrase matching matters.
type HashProvider struct {
	config Config
}

// NewHashProvider creates a new hash embedding provider
func NewHashProvider(config Config) *HashProvider {
	return &HashProvider{config: config}
}

// Name returns the provider name
func (p *HashProvider) Name() string {
	return "hash"
}

// IsAvailable always reports true - there is nothing to reach
func (p *HashProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Embed maps each text to a fixed-length hashed token-count vector
func (p *HashProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func hashVector(text string) []float32 {
	vec := make([]float32, hashDimensions)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%hashDimensions]++
	}

	// L2-normalize so cosine depends on token distribution, not text length
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec
}

// tokenize lowercases and splits on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
