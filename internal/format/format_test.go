package format

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestAmountRules(t *testing.T) {
	f := New(language.AmericanEnglish)
	cases := []struct {
		in   string
		want string
	}{
		{"1234.5", "1,234.5"},
		{"1000", "1,000"},
		{"0", "0"},
		{"0.00", "0"},
		{"-10", "-10"},
		{"90", "90"},
		{"1500.004", "1,500"},
		{"1234.567", "1,234.57"},
		{"0.1", "0.1"},
		{"-1234567.8", "-1,234,567.8"},
		{"-0.5", "-0.5"},
		{"-0.001", "0"},
		{"0.05", "0.05"},
		{"98765432109876.54", "98,765,432,109,876.54"},
		{"123456789012345678.91", "123,456,789,012,345,678.91"},
		{"-999999999999999999.99", "-999,999,999,999,999,999.99"},
		{"12345678901234567890123.4", "12,345,678,901,234,567,890,123.4"},
	}
	for _, tc := range cases {
		got, err := f.Amount("amount", NewValue(decimal.RequireFromString(tc.in)))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %s", tc.in)
	}
}

func TestAmountAbsentIsEmpty(t *testing.T) {
	f := New(language.AmericanEnglish)
	got, err := f.Amount("amount", Value{})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestAmountUnparseableIsFormatError(t *testing.T) {
	f := New(language.AmericanEnglish)
	got, err := f.Amount("balance", ParseValue("twelve"))
	assert.Equal(t, "", got)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "balance", fe.Field)
	assert.Equal(t, "twelve", fe.Value)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestAmountFollowsLocale(t *testing.T) {
	f := New(language.German)
	got, err := f.Amount("amount", NewValue(decimal.RequireFromString("1234.5")))
	require.NoError(t, err)
	assert.Equal(t, "1.234,5", got)

	got, err = f.Amount("amount", NewValue(decimal.RequireFromString("-98765432109876.54")))
	require.NoError(t, err)
	assert.Equal(t, "-98.765.432.109.876,54", got)

	got, err = f.Amount("amount", NewValue(decimal.RequireFromString("12345678901234567890123.4")))
	require.NoError(t, err)
	assert.Equal(t, "12.345.678.901.234.567.890.123,4", got)
}

func TestValueUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
		E Value `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a":-10,"b":null,"c":"12.50","d":"abc","e":true}`), &payload)
	require.NoError(t, err)

	d, ok := payload.A.Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(-10)))
	assert.True(t, payload.B.Absent())
	d, ok = payload.C.Decimal()
	require.True(t, ok)
	assert.Equal(t, "12.5", d.String())
	_, ok = payload.D.Decimal()
	assert.False(t, ok)
	assert.False(t, payload.D.Absent())
	_, ok = payload.E.Decimal()
	assert.False(t, ok)
}

func TestValueMarshalJSON(t *testing.T) {
	raw, err := json.Marshal([]Value{NewValue(decimal.RequireFromString("90.5")), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[90.5, null]`, string(raw))
}

func TestDateTime(t *testing.T) {
	f := New(language.AmericanEnglish)

	got, err := f.DateTime("created", Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "", got)

	ts := ParseTimestamp("2024-03-05T21:07:00.123456+02:00")
	got, err = f.DateTime("created", ts)
	require.NoError(t, err)
	assert.Equal(t, "March 5, 2024 7:07 PM", got)

	key, err := DateTimeSortKey("created", ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T19:07:00.123456Z", key)

	key, err = DateTimeSortKey("created", Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestTimestampUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
		C Timestamp `json:"c"`
		D Timestamp `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-01-02T03:04:05","b":null,"c":"yesterday","d":""}`), &payload)
	require.NoError(t, err)

	tm, ok := payload.A.Time()
	require.True(t, ok)
	assert.True(t, tm.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.True(t, payload.B.Absent())
	assert.True(t, payload.D.Absent())

	f := New(language.AmericanEnglish)
	_, err = f.DateTime("created", payload.C)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParseLocale(t *testing.T) {
	tag, err := ParseLocale("de_DE.UTF-8")
	require.NoError(t, err)
	base, _ := tag.Base()
	assert.Equal(t, "de", base.String())

	tag, err = ParseLocale("C")
	require.NoError(t, err)
	assert.Equal(t, language.AmericanEnglish, tag)

	_, err = ParseLocale("not a locale!")
	assert.Error(t, err)
}
