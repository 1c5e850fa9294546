// Package corexid generates and recognizes Corex identifiers, the opaque
// tokens that name stored URL mappings.
package corexid

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Prefix is the fixed namespace marker carried by every identifier.
	Prefix = "cx_"

	// entropyBytes is the number of random bytes behind each identifier.
	// 12 bytes = 96 bits, encoded as 16 base64url characters.
	entropyBytes = 12
)

// encodedLen is the length of the random component after encoding.
var encodedLen = base64.RawURLEncoding.EncodedLen(entropyBytes)

// pattern matches a well-formed identifier. The base64url alphabet is
// URL-safe and never contains a dot, so the first dot in a path segment
// always belongs to an appended file extension.
var pattern = regexp.MustCompile(`^cx_[A-Za-z0-9_-]{` + strconv.Itoa(encodedLen) + `}$`)

// Generator produces Corex identifiers from a cryptographically strong
// random source.
type Generator struct{}

// NewGenerator creates a new identifier generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a fresh identifier. A failure of the system random
// source is unrecoverable and panics.
func (g *Generator) Generate() string {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("corexid: random source unavailable: " + err.Error())
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(buf)
}

// IsValid reports whether s is a well-formed identifier without an
// extension suffix.
func IsValid(s string) bool {
	return pattern.MatchString(s)
}

// TrimExtension strips a cosmetic file-extension suffix from a route
// parameter, recovering the bare identifier.
// Example: "cx_abc123.mp4" -> "cx_abc123".
func TrimExtension(param string) string {
	if i := strings.IndexByte(param, '.'); i != -1 {
		return param[:i]
	}
	return param
}
