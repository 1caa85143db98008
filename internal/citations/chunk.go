package citations

import "strings"

// Chunk packs the lines of text into chunks whose token count, together with
// the prompt, stays within budget. Lines are never split: a single line over
// the limit becomes a chunk of its own.
func Chunk(tok Tokenizer, prompt, text string, budget int) []string {
	limit := budget - len(tok.Encode(prompt))

	var (
		chunks  [][][]int
		current [][]int
		used    int
	)
	for _, line := range splitLines(text) {
		encoded := tok.Encode(line)
		n := len(encoded)
		if used+n <= limit {
			current = append(current, encoded)
			used += n
			continue
		}
		if len(current) > 0 {
			chunks = append(chunks, current)
		}
		current = [][]int{encoded}
		used = n
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		lines := make([]string, len(c))
		for i, encoded := range c {
			lines[i] = tok.Decode(encoded)
		}
		out = append(out, strings.Join(lines, "\n"))
	}
	return out
}

// TokenCount is the sum of per-line token counts, the same approximation
// Chunk budgets with.
func TokenCount(tok Tokenizer, text string) int {
	total := 0
	for _, line := range splitLines(text) {
		total += len(tok.Encode(line))
	}
	return total
}
