package healthsdk

import (
	"bytes"
	"errors"
)

const indent = "  "

var errEmptyBody = errors.New("empty body")

// Status is the decoded health payload. The zero Status means no payload has
// been received yet.
type Status struct {
	root *value
}

// ParseStatus decodes body once. Object key order is kept for rendering.
func ParseStatus(body []byte) (Status, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Status{}, errEmptyBody
	}
	root := new(value)
	if bytes.Equal(trimmed, []byte("null")) {
		return Status{root: root}, nil
	}
	if err := jsonUnmarshal(body, root); err != nil {
		return Status{}, err
	}
	return Status{root: root}, nil
}

// IsSet reports whether a payload was received. A literal JSON null counts as set.
func (s Status) IsSet() bool {
	return s.root != nil
}

// Pretty renders the payload indented by two spaces, the way JSON.stringify(v, null, 2)
// does. An unset status renders as null.
func (s Status) Pretty() string {
	if !s.IsSet() {
		return "null"
	}
	return s.root.stringify(indent)
}

// String is the compact rendering.
func (s Status) String() string {
	if !s.IsSet() {
		return "null"
	}
	return s.root.stringify("")
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of a single health fetch.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the fetch produced a payload.
func (r Result) OK() bool {
	return r.Err == nil
}
