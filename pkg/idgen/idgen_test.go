package idgen

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillis(t *testing.T) {
	now := time.UnixMilli(1710460800123)
	assert.Equal(t, "apt-1710460800123", Millis("apt-", now))
}

func TestBase36(t *testing.T) {
	now := time.UnixMilli(1710460800123)
	stamp := strconv.FormatInt(now.UnixMilli(), 36)

	id := Base36("pat", now, 3)
	require.True(t, strings.HasPrefix(id, "pat"+stamp))
	suffix := strings.TrimPrefix(id, "pat"+stamp)
	assert.Len(t, suffix, 3)
	for _, r := range suffix {
		assert.Contains(t, base36, string(r))
	}
}

func TestRandomLength(t *testing.T) {
	assert.Len(t, Random(0), 0)
	assert.Len(t, Random(8), 8)
}

func TestGeneratorSuffixesRepeats(t *testing.T) {
	fixed := time.UnixMilli(1710460800000)
	g := NewGenerator(func() time.Time { return fixed })

	assert.Equal(t, "apt-1710460800000", g.Next("apt-"))
	assert.Equal(t, "apt-1710460800000-1", g.Next("apt-"))
	assert.Equal(t, "apt-1710460800000-2", g.Next("apt-"))
	assert.Equal(t, "hr-1710460800000", g.Next("hr-"))

	fixed = fixed.Add(time.Millisecond)
	assert.Equal(t, "apt-1710460800001", g.Next("apt-"))
}
