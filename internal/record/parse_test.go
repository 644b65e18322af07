package record

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemperature(t *testing.T) {
	for _, tc := range []struct {
		value    string
		expected int16
	}{
		{value: "-99.9", expected: -999},
		{value: "-12.3", expected: -123},
		{value: "-1.5", expected: -15},
		{value: "-1.0", expected: -10},
		{value: "-0.0", expected: 0},
		{value: "0.0", expected: 0},
		{value: "0.3", expected: 3},
		{value: "12.3", expected: 123},
		{value: "99.9", expected: 999},
		{value: "007.5", expected: 75},
		{value: "3276.7", expected: math.MaxInt16},
		{value: "-3276.7", expected: -math.MaxInt16},
	} {
		got, err := ParseTemperature([]byte(tc.value))
		require.NoError(t, err, tc.value)
		assert.Equal(t, tc.expected, got, "wrong parsing of %s", tc.value)
	}
}

func TestParseTemperatureMatchesRoundedFloat(t *testing.T) {
	for tenths := -9999; tenths <= 9999; tenths++ {
		s := fmt.Sprintf("%.1f", float64(tenths)/10)
		f, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)

		got, err := ParseTemperature([]byte(s))
		require.NoError(t, err, s)
		if want := int16(math.Round(f * 10)); got != want {
			t.Fatalf("ParseTemperature(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestParseTemperatureRejectsMalformed(t *testing.T) {
	for _, tc := range []struct {
		value string
		err   error
	}{
		{value: "", err: ErrMalformedTemperature},
		{value: "-", err: ErrMalformedTemperature},
		{value: "1", err: ErrMalformedTemperature},
		{value: "12", err: ErrMalformedTemperature},
		{value: ".5", err: ErrMalformedTemperature},
		{value: "-.5", err: ErrMalformedTemperature},
		{value: "1.25", err: ErrMalformedTemperature},
		{value: "1.2.3", err: ErrMalformedTemperature},
		{value: "1..3", err: ErrMalformedTemperature},
		{value: "--1.0", err: ErrMalformedTemperature},
		{value: "1-.0", err: ErrMalformedTemperature},
		{value: "a1.0", err: ErrMalformedTemperature},
		{value: "1.x", err: ErrMalformedTemperature},
		{value: "12.3\r", err: ErrMalformedTemperature},
		{value: " 1.0", err: ErrMalformedTemperature},
		{value: "3276.8", err: ErrTemperatureRange},
		{value: "-99999.9", err: ErrTemperatureRange},
	} {
		_, err := ParseTemperature([]byte(tc.value))
		assert.ErrorIs(t, err, tc.err, "input %q", tc.value)
	}
}

func TestParse(t *testing.T) {
	data := []byte("Hamburg;12.0\nBerlin;-3.5\nX;5.0")

	name, temp, next, err := Parse(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", string(name))
	assert.Equal(t, int16(120), temp)
	assert.Equal(t, 13, next)

	name, temp, next, err = Parse(data, next)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", string(name))
	assert.Equal(t, int16(-35), temp)
	assert.Equal(t, 25, next)

	name, temp, next, err = Parse(data, next)
	require.NoError(t, err)
	assert.Equal(t, "X", string(name))
	assert.Equal(t, int16(50), temp)
	assert.Equal(t, len(data), next)
}

func TestParseNameAliasesInput(t *testing.T) {
	data := []byte("Oslo;1.0\n")
	name, _, _, err := Parse(data, 0)
	require.NoError(t, err)
	data[0] = 'A'
	assert.Equal(t, "Aslo", string(name))
}

func TestParseRejectsMalformedRecords(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		err   error
	}{
		{name: "no delimiter at all", input: "Oslo 1.0\n", err: ErrMissingDelimiter},
		{name: "delimiter on next line", input: "Oslo 1.0\nBergen;2.0\n", err: ErrMissingDelimiter},
		{name: "empty name", input: ";1.0\n", err: ErrEmptyName},
		{name: "empty temperature", input: "Oslo;\n", err: ErrMalformedTemperature},
		{name: "extra field", input: "Oslo;1.0;2.0\n", err: ErrMalformedTemperature},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := Parse([]byte(tc.input), 0)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFormatError(t *testing.T) {
	err := error(&FormatError{Offset: 42, Err: ErrEmptyName})
	assert.EqualError(t, err, "malformed record at byte 42: empty station name")
	assert.ErrorIs(t, err, ErrEmptyName)

	var fe *FormatError
	require.ErrorAs(t, fmt.Errorf("chunk 3: %w", err), &fe)
	assert.Equal(t, int64(42), fe.Offset)
}

var parseSink int16

func BenchmarkParseTemperature(b *testing.B) {
	data1 := []byte("1.2")
	data2 := []byte("-12.3")

	for i := 0; i < b.N; i++ {
		v1, _ := ParseTemperature(data1)
		v2, _ := ParseTemperature(data2)
		parseSink = v1 + v2
	}
}
