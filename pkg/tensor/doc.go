// Package tensor provides the dense row-major float32 matrix used to hold
// row-indexed numeric tables (latents, labels, embeddings), plus a compact
// binary row encoding for storing rows as BLOBs.
package tensor
