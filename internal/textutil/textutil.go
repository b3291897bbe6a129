package textutil

import "bytes"

// NormalizeUTF8LF converts CRLF to LF and ensures the output is valid UTF-8
// by replacing invalid byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	// Normalize newlines first
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	// Ensure valid UTF-8
	return bytes.ToValidUTF8(b, []byte("\uFFFD"))
}

// Words counts whitespace-separated words.
func Words(b []byte) int {
	return len(bytes.Fields(b))
}
