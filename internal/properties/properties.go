// Package properties implements the server.properties codec: a flat-line
// key=value text format with typed values, as written and read by the
// Minecraft server daemon.
//
// Values are coerced on parse, checked in this order:
//
//	"true" / "false"        -> bool
//	all decimal digits      -> int
//	empty string            -> nil
//	leading '{'             -> JSON object (map[string]any)
//	anything else           -> string
//
// A Document preserves the key order of its input, so that
// Parse(Serialize(doc)) is value-equal to doc. The original textual
// formatting (comment lines, numeric leading zeros) is not preserved;
// only semantic equality holds.
package properties

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nicdgonzalez/fuji/internal/errors"
)

// Document is an ordered mapping of property keys to typed values.
// The zero value is not usable; construct with New or Parse.
type Document struct {
	keys   []string
	values map[string]any
}

// New returns an empty Document.
func New() *Document {
	return &Document{values: make(map[string]any)}
}

// Len returns the number of keys in the document.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the document's keys in insertion order.
// The returned slice is a copy and safe to mutate.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Get returns the value for key and whether the key is present.
// A present key may hold a nil value (an empty property).
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores a value under key, appending the key to the iteration order
// if it is new.
func (d *Document) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// String returns the value for key as a string. The second return is
// false when the key is absent or the value is not a string.
func (d *Document) String(key string) (string, bool) {
	s, ok := d.values[key].(string)
	return s, ok
}

// Int returns the value for key as an int. The second return is false
// when the key is absent or the value is not an int.
func (d *Document) Int(key string) (int, bool) {
	n, ok := d.values[key].(int)
	return n, ok
}

// Bool returns the value for key as a bool. The second return is false
// when the key is absent or the value is not a bool.
func (d *Document) Bool(key string) (bool, bool) {
	b, ok := d.values[key].(bool)
	return b, ok
}

// Parse converts server.properties text into a Document.
//
// Lines beginning with '#' are comments and skipped, as are empty lines.
// Every other line must contain at least one '='; the first occurrence
// splits key from value, so the value may itself contain '='. A line
// without '=' produces a *errors.FormatError.
func Parse(text string) (*Document, error) {
	doc := New()

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, raw, found := strings.Cut(line, "=")
		if !found {
			return nil, errors.NewFormatError("missing '=' separator").WithLine(i + 1)
		}

		value, err := coerce(raw)
		if err != nil {
			return nil, errors.NewFormatError("invalid object value").WithLine(i + 1).WithCause(err)
		}
		doc.Set(key, value)
	}

	return doc, nil
}

// coerce applies the type-coercion rules to a raw property value.
func coerce(raw string) (any, error) {
	switch {
	case raw == "true":
		return true, nil
	case raw == "false":
		return false, nil
	case isDigits(raw):
		n, err := strconv.Atoi(raw)
		if err != nil {
			// Out of int range; leave as string rather than lose data.
			return raw, nil
		}
		return n, nil
	case raw == "":
		return nil, nil
	case strings.HasPrefix(raw, "{"):
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return raw, nil
	}
}

// isDigits reports whether s is non-empty and all decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Serialize converts the document back into server.properties text.
// Keys appear in insertion order, one per line, with no trailing newline.
func (d *Document) Serialize() string {
	lines := make([]string, 0, len(d.keys))

	for _, key := range d.keys {
		lines = append(lines, key+"="+formatValue(d.values[key]))
	}

	return strings.Join(lines, "\n")
}

// formatValue renders a typed value in the flat-line format.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(data)
	case string:
		return v
	default:
		// Values set programmatically with types outside the codec's
		// repertoire fall back to JSON.
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
