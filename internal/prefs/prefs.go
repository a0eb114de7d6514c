// Package prefs turns userPrefs.jsonc into compiler defines.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kodedot/kodebuild/internal/logger"
)

var (
	// ErrNotObject is returned when the top-level JSON value is not an object
	ErrNotObject = errors.New("preferences must be a JSON object")
)

// Pref is a single user preference. Value holds the raw text: strings are
// unquoted, other JSON values keep their JSON spelling.
type Pref struct {
	Name  string
	Value string
}

// Prefs keeps preferences in file order.
type Prefs []Pref

// Load reads path and decodes it. A missing or malformed file yields an
// empty set and a warning; it never fails the build.
func Load(path string, log *logger.Logger) Prefs {
	// Path is the project's own preferences file
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		log.Warn("Could not load user preferences", "path", path, "error", err)
		return Prefs{}
	}

	p, err := Decode(data)
	if err != nil {
		log.Warn("Could not parse user preferences", "path", path, "error", err)
		return Prefs{}
	}

	log.Debug("Loaded user preferences", "path", path, "count", len(p))
	return p
}

// Decode strips comments from JSONC data and decodes the top-level object.
func Decode(data []byte) (Prefs, error) {
	dec := json.NewDecoder(bytes.NewReader(StripComments(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	// A repeated name keeps its first position and takes the last value.
	index := make(map[string]int)
	prefs := Prefs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid JSON: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		value, err := rawText(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		if i, dup := index[name]; dup {
			prefs[i].Value = value
			continue
		}
		index[name] = len(prefs)
		prefs = append(prefs, Pref{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: trailing data after object")
	}
	return prefs, nil
}

func rawText(raw json.RawMessage) (string, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Get returns the value for name
func (p Prefs) Get(name string) (string, bool) {
	for _, pref := range p {
		if pref.Name == name {
			return pref.Value, true
		}
	}
	return "", false
}
