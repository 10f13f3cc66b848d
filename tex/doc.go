// Package tex reads and writes LaTeX sources.
//
// The reader tokenizes the source, walks environments with a block parser
// and resolves a fixed set of inline commands with a brace-aware parser.
// Commands outside that set keep their text and are reported as warnings;
// nothing is expanded. The writer emits a complete article with a fixed
// preamble.
package tex
