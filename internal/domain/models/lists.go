package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// IntList accepts a JSON array of numbers (or numeric strings), a single number,
// or free text such as "5, 8" or "5 en 8" from which every number is taken.
type IntList []int

func (l *IntList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}

	switch b[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		out := make(IntList, 0, len(raw))
		for _, item := range raw {
			var n json.Number
			dec := json.NewDecoder(bytes.NewReader(item))
			dec.UseNumber()
			var v any
			if err := dec.Decode(&v); err != nil {
				return err
			}
			switch t := v.(type) {
			case json.Number:
				n = t
			case string:
				n = json.Number(strings.TrimSpace(t))
			default:
				return fmt.Errorf("unsupported list item %s", string(item))
			}
			i, err := strconv.Atoi(n.String())
			if err != nil {
				f, ferr := n.Float64()
				if ferr != nil {
					return fmt.Errorf("invalid number %q", n.String())
				}
				i = int(f)
			}
			out = append(out, i)
		}
		*l = out
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = parseInts(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*l = IntList{int(f)}
		return nil
	}
}

func parseInts(s string) IntList {
	out := IntList{}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// StringList accepts a JSON array of strings or one comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		out := StringList{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}

	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}
