package citations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runeTokenizer encodes one token per rune so counts are easy to reason about.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	rs := make([]rune, len(tokens))
	for i, t := range tokens {
		rs[i] = rune(t)
	}
	return string(rs)
}

func TestChunkRespectsBudget(t *testing.T) {
	tok := runeTokenizer{}
	prompt := "PROMPT"
	text := "aaaa\nbbbb\ncccc\ndd\neeeeee"
	budget := len(prompt) + 10

	chunks := Chunk(tok, prompt, text, budget)
	require.Equal(t, []string{"aaaa\nbbbb", "cccc\ndd", "eeeeee"}, chunks)

	for _, c := range chunks {
		sum := 0
		for _, line := range strings.Split(c, "\n") {
			sum += len(tok.Encode(line))
		}
		require.LessOrEqual(t, sum, budget-len(tok.Encode(prompt)))
	}
}

func TestChunkKeepsOversizedLineWhole(t *testing.T) {
	tok := runeTokenizer{}
	long := strings.Repeat("x", 50)
	chunks := Chunk(tok, "", "ab\n"+long+"\ncd", 5)
	require.Equal(t, []string{"ab", long, "cd"}, chunks)

	first := Chunk(tok, "", long+"\nab", 5)
	require.Equal(t, []string{long, "ab"}, first, "no empty leading chunk")
}

func TestChunkRoundTrip(t *testing.T) {
	tok := runeTokenizer{}
	text := "Smith, J. (2001). A Study.\nJones, K. Ünïcode Title.\n\nLee, M. Third.\nshort"
	for budget := 1; budget < 60; budget++ {
		chunks := Chunk(tok, "", text, budget)
		require.Equal(t, text, strings.Join(chunks, "\n"), "budget %d", budget)
	}
}

func TestChunkEmptyText(t *testing.T) {
	require.Empty(t, Chunk(runeTokenizer{}, "p", "", 100))
}

func TestTokenCount(t *testing.T) {
	require.Equal(t, 6, TokenCount(runeTokenizer{}, "abc\ndef\n"))
}
