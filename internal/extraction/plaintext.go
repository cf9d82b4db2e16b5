package extraction

import "os"

// PlainText extracts the raw bytes of a file as text, used for plain text
// and any source-code or structured-text extension with no markup to
// strip.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Extract reads path and returns its content verbatim.
func (p *PlainText) Extract(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
