package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

// FakeProvider is a deterministic, dependency-free Provider used in tests
// and examples. It hashes text into a fixed-width vector so that identical
// inputs always embed identically and dissimilar inputs land far apart,
// without requiring a real model.
type FakeProvider struct {
	dim    int
	sparse bool
}

// NewFakeProvider returns a FakeProvider with the given dense width.
func NewFakeProvider(dim int, sparseEnabled bool) *FakeProvider {
	if dim <= 0 {
		dim = 64
	}
	return &FakeProvider{dim: dim, sparse: sparseEnabled}
}

func (p *FakeProvider) Dimension() int      { return p.dim }
func (p *FakeProvider) SparseEnabled() bool { return p.sparse }

func (p *FakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	return hashEmbed(text, p.dim), nil
}

func (p *FakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = p.Embed(ctx, t)
	}
	return out, nil
}

func (p *FakeProvider) EmbedFull(ctx context.Context, text string) (Full, error) {
	dense, _ := p.Embed(ctx, text)
	f := Full{Dense: dense}
	if p.sparse {
		f.Sparse = hashSparse(text)
	}
	return f, nil
}

func (p *FakeProvider) EmbedBatchFull(ctx context.Context, texts []string) ([]Full, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	out := make([]Full, len(texts))
	for i, t := range texts {
		out[i], _ = p.EmbedFull(ctx, t)
	}
	return out, nil
}

// hashEmbed deterministically maps text to a unit-ish vector of width dim.
func hashEmbed(text string, dim int) []float32 {
	vec := make([]float32, dim)
	if text == "" {
		return vec
	}
	h := fnv.New64a()
	for i := 0; i < dim; i++ {
		h.Reset()
		_, _ = h.Write([]byte{byte(i), byte(i >> 8)})
		_, _ = h.Write([]byte(text))
		v := h.Sum64()
		vec[i] = float32(int64(v%2000)-1000) / 1000.0
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

// hashSparse derives a small sparse vector from whitespace-separated terms.
func hashSparse(text string) *Sparse {
	terms := map[uint32]float32{}
	word := make([]byte, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		h := fnv.New32a()
		_, _ = h.Write(word)
		terms[h.Sum32()%65536]++
		word = word[:0]
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' {
			flush()
			continue
		}
		word = append(word, c)
	}
	flush()

	s := &Sparse{}
	for idx, val := range terms {
		s.Indices = append(s.Indices, idx)
		s.Values = append(s.Values, val)
	}
	return s
}
