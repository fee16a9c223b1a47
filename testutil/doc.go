// Package testutil provides testing utilities for the index packages.
//
// This package is intended for use in tests and benchmarks only. It
// provides a seeded, thread-safe random generator, synthetic text
// corpora with a skewed (Zipfian) token distribution, and a brute
// force phrase matcher used as ground truth when verifying scorers.
//
// # Random Corpus Generation
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Corpus(200, 5, 30, vocab)
//
// # Ground Truth
//
//	want := testutil.BruteForcePhrase(docs, []string{"a", "b"})
package testutil
