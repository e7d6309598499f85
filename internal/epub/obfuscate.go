package epub

import (
	"crypto/sha1" // #nosec G505 -- mandated by the IDPF font obfuscation algorithm
	"strings"
)

// obfuscatedPrefix is the number of leading font bytes the algorithm XORs.
const obfuscatedPrefix = 1040

// obfuscationAlgorithm is the encryption method URI for encryption.xml.
const obfuscationAlgorithm = "http://www.idpf.org/2008/embedding"

// obfuscationKey derives the XOR key from the unique identifier with all
// XML whitespace removed.
func obfuscationKey(identifier string) [sha1.Size]byte {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, identifier)
	return sha1.Sum([]byte(clean)) // #nosec G401
}

// Obfuscate returns a copy of font with its first 1040 bytes XORed with the
// key derived from identifier. Applying it twice restores the font.
func Obfuscate(font []byte, identifier string) []byte {
	key := obfuscationKey(identifier)
	out := make([]byte, len(font))
	copy(out, font)
	for i := 0; i < len(out) && i < obfuscatedPrefix; i++ {
		out[i] ^= key[i%len(key)]
	}
	return out
}
