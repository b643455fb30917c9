// Package npy reads and writes NumPy .npy files.
//
// Only C-ordered arrays are supported. Numeric dtypes (bool, signed and
// unsigned integers, float32, float64, either byte order) are converted to
// float32; fixed-width unicode ("U") and byte ("S") arrays are decoded to
// strings. Object arrays (pickles) are rejected.
package npy
