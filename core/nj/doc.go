// Package nj reconstructs unrooted phylogenies from PHYLIP distance
// matrices by neighbor joining. Three pair-search strategies share the
// join machinery: a naive all-pairs scan, a rapidnj-style bounded search
// over per-row candidate batches, and a hybrid that runs a configured
// share of the join steps naively before switching to the batched search.
package nj
