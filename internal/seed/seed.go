// Package seed resolves the 64-bit seed that identifies a generated language,
// either from a permalink path or from a fresh random draw.
package seed

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"path"
	"strconv"
	"strings"
)

// PathPrefix is the literal first segment of a permalink path.
const PathPrefix = "seed"

// Seed fully determines a generated language profile.
type Seed uint64

// String renders the seed as lowercase hex without a 0x prefix.
func (s Seed) String() string {
	return strconv.FormatUint(uint64(s), 16)
}

// RandomSource supplies fresh seeds when no permalink is present.
type RandomSource interface {
	Uint64() uint64
}

// RandomSourceFunc adapts ordinary functions to RandomSource.
type RandomSourceFunc func() uint64

// Uint64 returns the next value from the wrapped function.
func (f RandomSourceFunc) Uint64() uint64 { return f() }

// CryptoSource draws seeds from crypto/rand.
type CryptoSource struct{}

// Uint64 reads eight bytes from the system CSPRNG, falling back to the runtime
// generator if the read fails.
func (CryptoSource) Uint64() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Resolver turns URL paths into seeds.
type Resolver struct {
	source RandomSource
}

// NewResolver builds a Resolver. A nil source uses CryptoSource.
func NewResolver(source RandomSource) *Resolver {
	if source == nil {
		source = CryptoSource{}
	}
	return &Resolver{source: source}
}

// Resolve parses a permalink from segments or returns a fresh seed. Malformed
// input is not an error; it simply yields a random seed.
func (r *Resolver) Resolve(segments []string) Seed {
	if s, ok := Parse(segments); ok {
		return s
	}
	return r.Fresh()
}

// ResolvePath is Resolve over a slash separated URL path.
func (r *Resolver) ResolvePath(p string) Seed {
	return r.Resolve(Segments(p))
}

// Fresh samples a seed uniformly from the full 64-bit space.
func (r *Resolver) Fresh() Seed {
	return Seed(r.source.Uint64())
}

// Parse recognises seed/<version>/<hex>. The version segment is consumed but
// not interpreted.
func Parse(segments []string) (Seed, bool) {
	if len(segments) < 3 || segments[0] != PathPrefix {
		return 0, false
	}
	raw := segments[2]
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, false
	}
	return Seed(v), true
}

// Segments splits a URL path into its non-empty segments.
func Segments(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// IsPermalink reports whether p encodes a parseable seed.
func IsPermalink(p string) bool {
	_, ok := Parse(Segments(p))
	return ok
}

// PermalinkPath encodes s as /seed/<version>/<hex>.
func PermalinkPath(version string, s Seed) string {
	return "/" + PathPrefix + "/" + version + "/" + s.String()
}
