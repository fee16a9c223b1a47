package testutil

import (
	"math"
	"math/rand"
	"strings"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Vocabulary returns n distinct synthetic tokens ("t000", "t001", ...).
func Vocabulary(n int) []string {
	vocab := make([]string, n)
	for i := range vocab {
		vocab[i] = "t" + string([]byte{'0' + byte(i/100%10), '0' + byte(i/10%10), '0' + byte(i%10)})
	}
	return vocab
}

// Document generates one document of numTokens tokens drawn from vocab
// with a Zipfian skew, so a few tokens are frequent and most are rare,
// the way real text behaves.
func (r *RNG) Document(numTokens int, vocab []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := make([]string, numTokens)
	for i := range tokens {
		tokens[i] = vocab[r.zipfLocked(len(vocab), 1.2)]
	}
	return strings.Join(tokens, " ")
}

// Corpus generates numDocs documents with lengths uniform in
// [minTokens, maxTokens].
func (r *RNG) Corpus(numDocs, minTokens, maxTokens int, vocab []string) []string {
	docs := make([]string, numDocs)
	for i := range docs {
		n := minTokens
		if maxTokens > minTokens {
			n += r.Intn(maxTokens - minTokens + 1)
		}
		docs[i] = r.Document(n, vocab)
	}
	return docs
}

// zipfLocked returns a Zipf-distributed value in [0, n) with skew s
// (caller must hold the lock). Inverse transform over the truncated
// harmonic series; exact, if not fast, which is fine for tests.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// BruteForcePhrase returns the ids of the documents containing the
// phrase tokens at consecutive positions, in ascending order. Documents
// are whitespace-tokenized, mirroring the segment writer's tokenizer on
// already-lowercase input.
func BruteForcePhrase(docs []string, phrase []string) []uint32 {
	var out []uint32
	for id, doc := range docs {
		if PhraseFreq(strings.Fields(doc), phrase) > 0 {
			out = append(out, uint32(id))
		}
	}
	return out
}

// PhraseFreq counts the positions at which phrase occurs in tokens.
func PhraseFreq(tokens, phrase []string) int {
	if len(phrase) == 0 || len(tokens) < len(phrase) {
		return 0
	}
	freq := 0
	for start := 0; start+len(phrase) <= len(tokens); start++ {
		match := true
		for i, p := range phrase {
			if tokens[start+i] != p {
				match = false
				break
			}
		}
		if match {
			freq++
		}
	}
	return freq
}
