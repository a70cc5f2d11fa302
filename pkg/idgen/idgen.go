// Package idgen builds the time-based entity ids used across the API.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Millis returns <prefix><unix ms>, e.g. apt-1710460800000.
func Millis(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%d", prefix, now.UnixMilli())
}

// Base36 returns <prefix><unix ms in base36><n random base36 chars>.
func Base36(prefix string, now time.Time, n int) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 36) + Random(n)
}

// Random returns n random base36 characters.
func Random(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36[idx.Int64()])
	}
	return b.String()
}

// Generator hands out Millis ids that stay unique when several are taken in
// the same millisecond: the repeats get a -<n> suffix.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]string
	seq  map[string]int
}

// NewGenerator uses now as its clock, or time.Now when now is nil.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now, last: make(map[string]string), seq: make(map[string]int)}
}

// Next returns the next id for prefix.
func (g *Generator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := Millis(prefix, g.now())
	if id == g.last[prefix] {
		g.seq[prefix]++
		return fmt.Sprintf("%s-%d", id, g.seq[prefix])
	}
	g.last[prefix] = id
	g.seq[prefix] = 0
	return id
}

// Now exposes the generator's clock.
func (g *Generator) Now() time.Time {
	return g.now()
}
