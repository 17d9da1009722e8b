package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseJSON decodes a JSON array of record objects. Any structural problem
// fails the whole document.
func ParseJSON(data []byte) ([]Candidate, error) {
	out, err := decodeJSONArray(data)
	if err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	normalizeNames(out)
	return out, nil
}

func decodeJSONArray(data []byte) ([]Candidate, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(decoded))
	token, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read array start: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return nil, errors.New("payload must be a JSON array of records")
	}

	out := make([]Candidate, 0)
	for index := 0; dec.More(); index++ {
		var c Candidate
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("record %d: %w", index, err)
		}
		out = append(out, c)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read array end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON array")
	}
	return out, nil
}
