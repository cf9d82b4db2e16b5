package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/localforge/ragcore/internal/core/domain"
)

// Encoding is the parallel-array output of a single Encode/EncodePair call.
// Every field has length exactly MaxSeqLen.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
	// TokenCount is the effective, pre-padding token count.
	TokenCount int
}

// Tokenizer is stateless after construction and safe for concurrent
// read-only use (it holds no mutable state past New).
type Tokenizer struct {
	vocab    map[string]int64
	settings Settings
	model    ModelMeta

	clsID, sepID, padID, unkID int64
}

// cjkRanges are the blocks isolated by padding each codepoint with spaces
// so it becomes its own pre-token, per the published CJK isolation heuristic.
var cjkRanges = [][2]rune{
	{0x4E00, 0x9FFF},
	{0x3400, 0x4DBF},
	{0x20000, 0x2A6DF},
	{0x2A700, 0x2B73F},
	{0x2B740, 0x2B81F},
	{0x2B820, 0x2CEAF},
	{0xF900, 0xFAFF},
	{0x2F800, 0x2FA1F},
}

// New constructs a Tokenizer from three sidecar files: a vocabulary list,
// tokenizer settings, and WordPiece model metadata. Any missing sidecar
// file, a vocabulary missing a required special token, or max_seq_len < 2
// is fatal at construction.
func New(vocabPath, settingsPath, modelMetaPath string) (*Tokenizer, error) {
	vocab, _, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	model, err := loadModelMeta(modelMetaPath)
	if err != nil {
		return nil, err
	}

	if settings.MaxSeqLen < 2 {
		return nil, fmt.Errorf("%w: max_seq_len must be >= 2, got %d", domain.ErrConfiguration, settings.MaxSeqLen)
	}

	required := []string{model.ClsToken, model.SepToken, model.PadToken, model.UnkToken}
	for _, tok := range required {
		if _, ok := vocab[tok]; !ok {
			return nil, fmt.Errorf("%w: %w: vocabulary missing %q", domain.ErrDataIntegrity, domain.ErrVocabMissingToken, tok)
		}
	}

	return &Tokenizer{
		vocab:    vocab,
		settings: settings,
		model:    model,
		clsID:    vocab[model.ClsToken],
		sepID:    vocab[model.SepToken],
		padID:    vocab[model.PadToken],
		unkID:    vocab[model.UnkToken],
	}, nil
}

// MaxSeqLen returns the configured maximum sequence length.
func (t *Tokenizer) MaxSeqLen() int { return t.settings.MaxSeqLen }

// Encode produces a single-segment encoding.
func (t *Tokenizer) Encode(primary string) (Encoding, error) {
	return t.encode(primary, "", false)
}

// EncodePair produces a two-segment encoding with token-type ids
// distinguishing the segments, used by the reranker's (query, chunk) pairs.
// Fails if max_seq_len can't hold the three special tokens ([CLS] [SEP]
// [SEP]) a pair always carries.
func (t *Tokenizer) EncodePair(primary, secondary string) (Encoding, error) {
	return t.encode(primary, secondary, true)
}

func (t *Tokenizer) encode(primary, secondary string, paired bool) (Encoding, error) {
	primaryTokens := t.tokenizeSegment(primary)
	var secondaryTokens []string
	if paired {
		secondaryTokens = t.tokenizeSegment(secondary)
	}

	reserved := 2
	if paired {
		reserved = 3
	}
	if reserved > t.settings.MaxSeqLen {
		return Encoding{}, fmt.Errorf("%w: max_seq_len %d too small for a paired encoding (needs at least %d for [CLS] [SEP] [SEP])",
			domain.ErrConfiguration, t.settings.MaxSeqLen, reserved)
	}
	budget := t.settings.MaxSeqLen - reserved

	// Truncate: trim the longer segment one token at a time (ties -> primary).
	for len(primaryTokens)+len(secondaryTokens) > budget {
		if len(secondaryTokens) > len(primaryTokens) {
			secondaryTokens = secondaryTokens[:len(secondaryTokens)-1]
		} else if len(primaryTokens) > 0 {
			primaryTokens = primaryTokens[:len(primaryTokens)-1]
		} else {
			break
		}
	}

	ids := make([]int64, 0, t.settings.MaxSeqLen)
	typeIDs := make([]int64, 0, t.settings.MaxSeqLen)

	ids = append(ids, t.clsID)
	typeIDs = append(typeIDs, 0)
	for _, tok := range primaryTokens {
		ids = append(ids, t.vocab[tok])
		typeIDs = append(typeIDs, 0)
	}
	ids = append(ids, t.sepID)
	typeIDs = append(typeIDs, 0)

	if paired {
		for _, tok := range secondaryTokens {
			ids = append(ids, t.vocab[tok])
			typeIDs = append(typeIDs, 1)
		}
		ids = append(ids, t.sepID)
		typeIDs = append(typeIDs, 1)
	}

	count := len(ids)
	mask := make([]int64, count, t.settings.MaxSeqLen)
	for i := range mask {
		mask[i] = 1
	}

	for len(ids) < t.settings.MaxSeqLen {
		ids = append(ids, t.padID)
		mask = append(mask, 0)
		typeIDs = append(typeIDs, t.model.PadTokenTypeID)
	}

	return Encoding{
		InputIDs:      ids,
		AttentionMask: mask,
		TokenTypeIDs:  typeIDs,
		TokenCount:    count,
	}, nil
}

// tokenizeSegment runs steps 1-4 of the algorithm (clean, CJK isolation,
// basic split, WordPiece greedy match) and returns the resulting subword
// tokens, without special tokens, truncation, or padding.
func (t *Tokenizer) tokenizeSegment(s string) []string {
	cleaned := clean(s)
	if t.settings.DoCJKIsolation {
		cleaned = isolateCJK(cleaned)
	}

	var tokens []string
	for _, pre := range strings.Fields(cleaned) {
		for _, basic := range t.basicSplit(pre) {
			tokens = append(tokens, t.wordpieceTokenize(basic)...)
		}
	}
	return tokens
}

// clean drops NUL, the replacement character, and control characters other
// than tab/LF/CR, and maps every whitespace character to ASCII space.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == 0 || r == unicode.ReplacementChar:
			continue
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCJK(r rune) bool {
	for _, rng := range cjkRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// isolateCJK pads each CJK codepoint with spaces so it becomes its own pre-token.
func isolateCJK(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if isCJK(r) {
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isPunct reports whether r is punctuation: connector, dash, open, close,
// initial-quote, final-quote, other (exactly unicode.Punct's constituent
// categories), or one of the ASCII punctuation ranges.
func isPunct(r rune) bool {
	if unicode.IsPunct(r) {
		return true
	}
	switch {
	case r >= 33 && r <= 47, r >= 58 && r <= 64, r >= 91 && r <= 96, r >= 123 && r <= 126:
		return true
	}
	return false
}

// basicSplit lowercases/strips accents per configuration then splits a
// pre-token on punctuation, emitting each punctuation character as its own token.
func (t *Tokenizer) basicSplit(pre string) []string {
	stripAccents := t.settings.DoLowerCase
	if t.settings.StripAccents != nil {
		stripAccents = *t.settings.StripAccents
	}

	word := pre
	if t.settings.DoLowerCase {
		word = strings.ToLower(word)
	}
	if stripAccents {
		word = stripAccentMarks(word)
	}

	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range word {
		if isPunct(r) {
			flush()
			tokens = append(tokens, string(r))
		} else {
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// stripAccentMarks NFD-decomposes the string and drops combining marks.
func stripAccentMarks(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wordpieceTokenize applies greedy longest-match-first subword matching to
// a single basic token. A token longer than max_input_chars_per_word, or a
// token with no matching vocabulary prefix, resolves to the unknown token.
func (t *Tokenizer) wordpieceTokenize(token string) []string {
	runes := []rune(token)
	if len(runes) == 0 {
		return nil
	}
	if t.model.MaxInputCharsPerWord > 0 && len(runes) > t.model.MaxInputCharsPerWord {
		return []string{t.model.UnkToken}
	}

	var output []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched string
		found := false
		for end > start {
			substr := string(runes[start:end])
			if start > 0 {
				substr = t.model.ContinuingSubwordPrefix + substr
			}
			if _, ok := t.vocab[substr]; ok {
				matched = substr
				found = true
				break
			}
			end--
		}
		if !found {
			return []string{t.model.UnkToken}
		}
		output = append(output, matched)
		start = end
	}
	return output
}
