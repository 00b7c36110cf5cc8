package memory_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/aide-lab/mnemo/pkg/service/memory"
)

func TestEstimateTokens(t *testing.T) {
	t.Run("empty text is zero tokens", func(t *testing.T) {
		gt.Value(t, memory.EstimateTokens("")).Equal(0)
	})

	t.Run("rounds up to the next token", func(t *testing.T) {
		gt.Value(t, memory.EstimateTokens("abcd")).Equal(1)
		gt.Value(t, memory.EstimateTokens("abcde")).Equal(2)
		gt.Value(t, memory.EstimateTokens("a")).Equal(1)
	})

	t.Run("counts bytes, not runes", func(t *testing.T) {
		// Four 3-byte runes are 12 bytes, so 3 tokens.
		gt.Value(t, memory.EstimateTokens("あいうえ")).Equal(3)
	})
}

func TestTruncateTokens(t *testing.T) {
	t.Run("text within budget is unchanged", func(t *testing.T) {
		text := "hello world"
		got, truncated := memory.TruncateTokens(text, 100)
		gt.Value(t, got).Equal(text)
		gt.Bool(t, truncated).False()
	})

	t.Run("long text is clamped under the cap", func(t *testing.T) {
		text := strings.Repeat("word ", 640) // ~800 tokens
		got, truncated := memory.TruncateTokens(text, 500)
		gt.Bool(t, truncated).True()
		gt.Value(t, memory.EstimateTokens(got) <= 500).Equal(true)
	})

	t.Run("cut lands on a word boundary", func(t *testing.T) {
		text := strings.Repeat("alpha bravo charlie ", 200)
		got, truncated := memory.TruncateTokens(text, 50)
		gt.Bool(t, truncated).True()
		gt.Bool(t, strings.HasSuffix(got, " ")).False()
		last := got[strings.LastIndex(got, " ")+1:]
		gt.Value(t, last == "alpha" || last == "bravo" || last == "charlie").Equal(true)
	})

	t.Run("zero budget yields empty text", func(t *testing.T) {
		got, truncated := memory.TruncateTokens("anything at all", 0)
		gt.Value(t, got).Equal("")
		gt.Bool(t, truncated).True()
	})

	t.Run("keeps multibyte runes intact", func(t *testing.T) {
		text := strings.Repeat("あ", 100)
		got, truncated := memory.TruncateTokens(text, 10)
		gt.Bool(t, truncated).True()
		for _, r := range got {
			gt.Value(t, r).Equal('あ')
		}
	})
}
