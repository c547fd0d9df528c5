package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Formats
// =============================================================================

// Format is a descriptor serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromFilename picks the decoder for an uploaded file.
// ".json" selects JSON; every other extension is decoded as YAML, which is
// also what the upload allowlist admits.
func FormatFromFilename(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// FormatFromContentType picks the decoder for a raw request body.
func FormatFromContentType(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
	}
	switch {
	case mediaType == "application/json", mediaType == "text/json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON, nil
	case mediaType == "application/yaml", mediaType == "application/x-yaml",
		mediaType == "text/yaml", mediaType == "text/x-yaml", strings.HasSuffix(mediaType, "+yaml"):
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
	}
}

// =============================================================================
// Decoding
// =============================================================================

// Decode parses content in the format implied by filename.
func Decode(filename string, content []byte) (Document, error) {
	return DecodeFormat(FormatFromFilename(filename), content)
}

// DecodeContentType parses content in the format implied by a MIME type.
func DecodeContentType(contentType string, content []byte) (Document, error) {
	format, err := FormatFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	return DecodeFormat(format, content)
}

// DecodeFormat parses content into a Document.
// This is a pure function - the caller owns reading the bytes.
func DecodeFormat(format Format, content []byte) (Document, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyInput
	}

	var (
		raw any
		err error
	)
	switch format {
	case FormatJSON:
		raw, err = decodeJSON(content)
	case FormatYAML:
		raw, err = decodeYAML(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, NewParseError(format, err.Error(), ErrInvalidSyntax)
	}

	m, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, NewParseError(format, "top-level value is not a mapping", ErrNotAMapping)
	}
	return Document(m), nil
}

func decodeJSON(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// Exactly one JSON value is allowed.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeYAML(content []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil // comments only
	}
	keepTimestampLiterals(&root)

	var v any
	if err := root.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// keepTimestampLiterals retags timestamp scalars as strings so a date like
// 2020-01-01 reaches the document as written instead of as a time.Time.
func keepTimestampLiterals(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, child := range n.Content {
		keepTimestampLiterals(child)
	}
}

// normalize converts YAML's map[any]any into map[string]any throughout the tree.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = normalize(child)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, child := range val {
			m[Text(k)] = normalize(child)
		}
		return m
	case []any:
		for i, child := range val {
			val[i] = normalize(child)
		}
		return val
	default:
		return v
	}
}
