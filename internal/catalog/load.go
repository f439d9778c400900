package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"voxterm/internal/jsonc"
)

// conversationalCategory holds filler phrases as a flat list instead of a
// command mapping.
const conversationalCategory = "conversational"

// Load reads a catalog source file. A missing file yields the built-in
// default catalog; an unreadable or malformed file is a fatal startup error.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	c, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes JSONC catalog content, preserving declaration order.
//
// The source maps category name to either a mapping of canonical command to
// trigger phrase list, or (for "conversational") a flat phrase list. Object
// key order is significant: earlier-declared templates win score ties, so the
// payload is walked token-by-token instead of into Go maps.
func Parse(content string) (*Catalog, error) {
	normalized, err := jsonc.Normalize(content)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))

	if err := expectDelim(decoder, '{'); err != nil {
		return nil, jsonc.WrapDecodeError(normalized, err)
	}

	var templates []*Template
	var fillers []string

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, jsonc.WrapDecodeError(normalized, err)
		}
		category, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v for category name", keyToken)
		}

		if category == conversationalCategory {
			var phrases []string
			if err := decoder.Decode(&phrases); err != nil {
				return nil, fmt.Errorf("category %q: expected phrase list: %w", category, err)
			}
			fillers = append(fillers, phrases...)
			continue
		}

		categoryTemplates, err := decodeCategory(decoder, category)
		if err != nil {
			return nil, err
		}
		templates = append(templates, categoryTemplates...)
	}

	if err := expectDelim(decoder, '}'); err != nil {
		return nil, jsonc.WrapDecodeError(normalized, err)
	}
	if err := jsonc.EnsureSingleValue(decoder); err != nil {
		return nil, jsonc.WrapDecodeError(normalized, err)
	}

	if len(templates) == 0 {
		return nil, errors.New("catalog declares no command templates")
	}

	return build(templates, fillers)
}

// decodeCategory walks one command -> phrase-list object in declaration order.
func decodeCategory(decoder *json.Decoder, category string) ([]*Template, error) {
	if err := expectDelim(decoder, '{'); err != nil {
		return nil, fmt.Errorf("category %q: expected command mapping: %w", category, err)
	}

	var templates []*Template
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		command, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("category %q: unexpected token %v for command", category, keyToken)
		}

		var phrases []string
		if err := decoder.Decode(&phrases); err != nil {
			return nil, fmt.Errorf("category %q command %q: expected trigger phrase list: %w", category, command, err)
		}

		templates = append(templates, &Template{
			Command:  command,
			Category: category,
			Phrases:  phrases,
		})
	}

	if err := expectDelim(decoder, '}'); err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	return templates, nil
}

func expectDelim(decoder *json.Decoder, want json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	delim, ok := token.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, found %v", want, token)
	}
	return nil
}
