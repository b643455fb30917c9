// Package registry resolves domain identifiers to descriptors and builds
// their sources.
package registry
