// Package output provides pluggable destinations for filtered text via the
// [Writer] interface, with [StdoutWriter] and [FileWriter] implementations.
package output
