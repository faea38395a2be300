// Package dump reads wikipedia XML dumps.
//
// Dumps are split into raw page blocks by Reader, turned into page records by
// Parser and mined for internal links by ExtractLinks. Parsing is best-effort:
// each field is located independently, so damage in one part of a block only
// affects the fields found there, and a bad block never affects its
// neighbours.
//
// The dumps are available from http://dumps.wikimedia.org/.
package dump
