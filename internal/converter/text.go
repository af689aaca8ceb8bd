package converter

import (
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextParser reads plain text as UTF-8, falling back to Latin-1.
type TextParser struct{}

func (TextParser) Supports(ext string) bool { return ext == ".txt" }

func (TextParser) Parse(_ context.Context, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
