package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedChunks(n, size, overlap int) int {
	if n <= size {
		return 1
	}
	step := size - overlap
	return (n - overlap + step - 1) / step
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	for _, n := range []int{1, 10, 5000} {
		chunks := Split(strings.Repeat("a", n), 5000, 500)
		require.Len(t, chunks, 1, "len %d", n)
		assert.Equal(t, 0, chunks[0].Start)
		assert.Len(t, chunks[0].Text, n)
	}
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", 5000, 500))
}

func TestSplit_TwelveThousandCharacters(t *testing.T) {
	chunks := Split(strings.Repeat("x", 12000), 5000, 500)

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 4500, 9000}, []int{chunks[0].Start, chunks[1].Start, chunks[2].Start})
	assert.Len(t, chunks[0].Text, 5000)
	assert.Len(t, chunks[1].Text, 5000)
	assert.Len(t, chunks[2].Text, 3000)
}

func TestSplit_CountAndOverlap(t *testing.T) {
	configs := []struct{ size, overlap int }{{5000, 500}, {10, 3}, {7, 0}, {4, 1}}
	for _, cfg := range configs {
		for n := cfg.size + 1; n <= cfg.size*4+3; n++ {
			text := make([]rune, n)
			for i := range text {
				text[i] = rune('a' + i%26)
			}
			chunks := Split(string(text), cfg.size, cfg.overlap)

			require.Len(t, chunks, expectedChunks(n, cfg.size, cfg.overlap), "n=%d size=%d overlap=%d", n, cfg.size, cfg.overlap)
			for i := 1; i < len(chunks); i++ {
				prev, cur := []rune(chunks[i-1].Text), []rune(chunks[i].Text)
				require.Len(t, prev, cfg.size)
				assert.Equal(t, string(prev[len(prev)-cfg.overlap:]), string(cur[:min(cfg.overlap, len(cur))]))
				assert.Equal(t, chunks[i-1].Start+cfg.size-cfg.overlap, chunks[i].Start)
			}
			last := chunks[len(chunks)-1]
			assert.Equal(t, n, last.Start+len([]rune(last.Text)))
		}
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	chunks := Split(strings.Repeat("é", 12), 5, 1)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("é", 5), chunks[0].Text)
	assert.Equal(t, 8, chunks[2].Start)
}
