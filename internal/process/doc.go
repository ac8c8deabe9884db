// Package process terminates a stale browser and its children when the
// rendering engine replaces or closes it. Failures are ignored; the go-rod
// launcher's own Kill is the fallback.
package process
