// Package tokenizer implements a deterministic WordPiece tokenizer: clean
// -> CJK isolation -> basic split -> greedy longest-match subword matching
// -> assemble -> truncate -> pad. There is no ecosystem Go library
// implementing WordPiece against an arbitrary vocabulary, so this package
// is a from-scratch implementation of the published algorithm.
package tokenizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/localforge/ragcore/internal/core/domain"
)

// Settings is the sidecar file controlling normalization and basic split
// behaviour (settings.json alongside the vocabulary).
type Settings struct {
	DoLowerCase   bool  `json:"do_lower_case"`
	StripAccents  *bool `json:"strip_accents"`
	DoCJKIsolation bool `json:"do_cjk_isolation"`
	MaxSeqLen     int   `json:"max_seq_len"`
}

// ModelMeta is the sidecar file carrying WordPiece-specific metadata and
// the special token spellings (model.json alongside the vocabulary).
type ModelMeta struct {
	UnkToken                string `json:"unk_token"`
	ClsToken                string `json:"cls_token"`
	SepToken                string `json:"sep_token"`
	PadToken                string `json:"pad_token"`
	ContinuingSubwordPrefix string `json:"continuing_subword_prefix"`
	MaxInputCharsPerWord    int    `json:"max_input_chars_per_word"`
	PadTokenTypeID          int64  `json:"pad_token_type_id"`
}

func defaultModelMeta() ModelMeta {
	return ModelMeta{
		UnkToken:                "[UNK]",
		ClsToken:                "[CLS]",
		SepToken:                "[SEP]",
		PadToken:                "[PAD]",
		ContinuingSubwordPrefix: "##",
		MaxInputCharsPerWord:    100,
		PadTokenTypeID:          0,
	}
}

// loadVocab reads a newline-delimited vocabulary file; line number (0-based)
// is the token id, matching the published WordPiece vocabulary format.
func loadVocab(path string) (map[string]int64, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening vocabulary %s: %v", domain.ErrResource, path, err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	var ordered []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var id int64
	for scanner.Scan() {
		tok := scanner.Text()
		ordered = append(ordered, tok)
		if tok != "" {
			vocab[tok] = id
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: reading vocabulary %s: %v", domain.ErrResource, path, err)
	}
	return vocab, ordered, nil
}

func loadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%w: opening tokenizer settings %s: %v", domain.ErrResource, path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: parsing tokenizer settings %s: %v", domain.ErrConfiguration, path, err)
	}
	return s, nil
}

func loadModelMeta(path string) (ModelMeta, error) {
	m := defaultModelMeta()
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("%w: opening WordPiece model metadata %s: %v", domain.ErrResource, path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: parsing WordPiece model metadata %s: %v", domain.ErrConfiguration, path, err)
	}
	return m, nil
}
