// Package sqlite stores numeric tables in a SQLite database using the pure-Go
// modernc.org/sqlite driver. Each matrix is kept under a name, one BLOB per
// row, so large latent or embedding tables can be shipped as a single file.
package sqlite
