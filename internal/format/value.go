package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type state uint8

const (
	stateAbsent state = iota
	stateValid
	stateInvalid
)

// Value is a decimal quantity that may be absent or unparseable.
// Decoding never fails; an unparseable value surfaces as a FormatError when formatted.
type Value struct {
	dec   decimal.Decimal
	raw   string
	state state
}

// NewValue wraps a decimal as a present value.
func NewValue(d decimal.Decimal) Value {
	return Value{dec: d, state: stateValid}
}

// ParseValue parses textual input. Empty input is absent.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{raw: s, state: stateInvalid}
	}
	return NewValue(d)
}

// Absent reports whether no value was supplied.
func (v Value) Absent() bool { return v.state == stateAbsent }

// Decimal returns the parsed quantity and whether it is usable.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.dec, v.state == stateValid
}

// Raw returns the original text of an unparseable value.
func (v Value) Raw() string { return v.raw }

// UnmarshalJSON accepts numbers, numeric strings and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*v = Value{raw: string(data), state: stateInvalid}
			return nil
		}
		*v = ParseValue(s)
		return nil
	}
	*v = ParseValue(string(data))
	return nil
}

// MarshalJSON emits a JSON number, null when absent, or the raw text when unparseable.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.state {
	case stateValid:
		return []byte(v.dec.String()), nil
	case stateInvalid:
		return json.Marshal(v.raw)
	default:
		return []byte("null"), nil
	}
}

// Timestamp is an instant that may be absent or unparseable.
type Timestamp struct {
	t     time.Time
	raw   string
	state state
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// NewTimestamp wraps t; the zero time is absent.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{t: t, state: stateValid}
}

// ParseTimestamp parses ISO-8601 text. Values without a zone are read as UTC.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t, state: stateValid}
		}
	}
	return Timestamp{raw: s, state: stateInvalid}
}

// Absent reports whether no timestamp was supplied.
func (t Timestamp) Absent() bool { return t.state == stateAbsent }

// Time returns the instant and whether it is usable.
func (t Timestamp) Time() (time.Time, bool) {
	return t.t, t.state == stateValid
}

// Raw returns the original text of an unparseable timestamp.
func (t Timestamp) Raw() string { return t.raw }

// UnmarshalJSON accepts ISO-8601 strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Timestamp{raw: string(data), state: stateInvalid}
		return nil
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON emits RFC 3339 text or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch t.state {
	case stateValid:
		return json.Marshal(t.t.UTC().Format(time.RFC3339Nano))
	case stateInvalid:
		return json.Marshal(t.raw)
	default:
		return []byte("null"), nil
	}
}
