// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a string field that tolerates the loose typing language models
// produce: a JSON string, number, boolean, null, or a list of those. Lists
// are joined with ", ". It always marshals as a JSON string.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans, null, and flat lists.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '[':
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*t = Text(strings.Join(parts, ", "))
		return nil
	case '{':
		return fmt.Errorf("expected text, got object")
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	b, err := strconv.ParseBool(string(data))
	if err != nil {
		return fmt.Errorf("expected text, got %s", data)
	}
	*t = Text(strconv.FormatBool(b))
	return nil
}

// String returns the text value.
func (t Text) String() string { return string(t) }
