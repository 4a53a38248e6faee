package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Suggestions is the result of reading a language model reply.
// Items is never empty. Fallback is set when the reply was not a JSON
// array and Items holds the raw reply as its only element.
type Suggestions struct {
	Items    []string
	Fallback bool
}

// ParseSuggestions decodes raw as a JSON array. String elements are
// returned as-is, other elements as their compact JSON text. Anything
// that is not a non-empty array falls back to a single-element result
// holding raw unmodified.
func ParseSuggestions(raw string) Suggestions {
	fallback := Suggestions{Items: []string{raw}, Fallback: true}

	// null decodes into a nil slice without error
	if !strings.HasPrefix(strings.TrimSpace(raw), "[") {
		return fallback
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || len(elems) == 0 {
		return fallback
	}

	items := make([]string, 0, len(elems))
	for _, elem := range elems {
		// null would decode into a string without error
		if len(elem) > 0 && elem[0] == '"' {
			var s string
			if err := json.Unmarshal(elem, &s); err != nil {
				return fallback
			}
			items = append(items, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, elem); err != nil {
			return fallback
		}
		items = append(items, buf.String())
	}
	return Suggestions{Items: items}
}

// CandidateSet is the ordered list of suggestions offered to a user
// for one task.
type CandidateSet []string

// Remove drops the first element equal to s. Later duplicates stay.
func (c CandidateSet) Remove(s string) CandidateSet {
	for i, candidate := range c {
		if candidate == s {
			out := make(CandidateSet, 0, len(c)-1)
			out = append(out, c[:i]...)
			return append(out, c[i+1:]...)
		}
	}
	return c
}
