// Package fingerprint produces the display-level tamper-evidence digests used
// for alert and evidence identity. The hash is deliberately non-cryptographic:
// identical input always yields identical output, collisions are acceptable.
package fingerprint

import "fmt"

const emptyDigest = "0x00000000"

// Digest computes a deterministic rolling hash of data. The accumulator is
// h = h*31 + codepoint, truncated to a 32-bit signed integer on every step.
func Digest(data string) string {
	if data == "" {
		return emptyDigest
	}

	var h int32
	for _, r := range data {
		h = h*31 + int32(r)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("0x%08x", v)
}

// File digests the identity string of an uploaded file. The content itself is
// never read; name, size and modification time stand in for it.
func File(name string, size int64, lastModified int64) string {
	return Digest(fmt.Sprintf("%s-%d-%d", name, size, lastModified))
}
