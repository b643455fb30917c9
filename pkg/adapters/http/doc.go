// Package http serves aligned groups over a read-only JSON API built on chi.
package http
