package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Answer is one respondent's answer to one question: a scalar for single-answer
// types or a list for checkbox questions.
type Answer struct {
	Value  string   `json:"-"`
	Values []string `json:"-"`
	IsList bool     `json:"-"`
}

// Scalar builds a single-value answer.
func Scalar(v string) Answer { return Answer{Value: v} }

// List builds a multi-value answer.
func List(vs ...string) Answer {
	if vs == nil {
		vs = []string{}
	}
	return Answer{Values: vs, IsList: true}
}

// Present reports whether the answer counts as given: a non-empty scalar or a
// non-empty list.
func (a Answer) Present() bool {
	if a.IsList {
		return len(a.Values) > 0
	}
	return a.Value != ""
}

// Has reports whether a list answer contains v.
func (a Answer) Has(v string) bool {
	for _, x := range a.Values {
		if x == v {
			return true
		}
	}
	return false
}

// Joined flattens the answer to a single string; lists are comma-joined.
func (a Answer) Joined() string {
	if a.IsList {
		return strings.Join(a.Values, ",")
	}
	return a.Value
}

// MarshalJSON writes a list answer as an array and a scalar as a string.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsList {
		vs := a.Values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON accepts any JSON value and never fails. Strings and numbers
// become scalars, arrays of scalars become lists, and everything else
// (null, false, 0, objects) becomes an absent answer.
func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = Answer{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		vs := make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := scalarString(r); ok && s != "" {
				vs = append(vs, s)
			}
		}
		a.Values = vs
		a.IsList = true
	default:
		if s, ok := scalarString(data); ok {
			a.Value = s
		}
	}
	return nil
}

func scalarString(data json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		if !x {
			return "", false
		}
		return "true", true
	}
	return "", false
}

// Response is one submitted set of answers keyed by question id.
type Response struct {
	ID          string            `json:"id"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Answers     map[string]Answer `json:"answers"`
}
