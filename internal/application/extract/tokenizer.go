package extract

import "regexp"

// Tokenizer splits raw text into candidate word tokens.  Tokenizer choice is
// a capability, not a hard dependency: a morphological analyzer that keeps
// only content-bearing tags can be plugged in where available, and the
// regex fallback below is always usable.  Downstream normalization does not
// depend on which strategy produced the tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// tokenPattern matches runs of two or more Hangul syllables or two or more
// alphanumeric characters.
var tokenPattern = regexp.MustCompile(`[가-힣]{2,}|[A-Za-z0-9]{2,}`)

// RegexTokenizer is the fallback tokenization strategy used when no
// morphological analyzer is available.
type RegexTokenizer struct{}

// Tokenize returns every maximal run of Hangul or alphanumeric characters of
// length two or more, in input order.
func (RegexTokenizer) Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
