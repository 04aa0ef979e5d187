package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

func TestPrinterScaledText(t *testing.T) {
	p := NewPrinter(domain.FormatSummary)
	cases := []struct {
		name string
		v    any
		nf   NumberFormat
		want string
	}{
		{"binary kilo", 1536, Fmt(1), "1.5 Ki"},
		{"nano", 0.0000005, DefaultNumberFormat(), "500.00000 n"},
		{"milli", 0.25, Fmt(2).In(1000).Unit("sec"), "250.00 msec"},
		{"decimal mega", 2.5e6, Fmt(3).In(1000).Unit("B"), "2.500 MB"},
		{"plain seconds", 1.23456, Fmt(3).In(0).Unit("sec"), "1.235 sec"},
		{"no suffix", 7.0, Fmt(2).In(0), "7.00"},
		{"percent", 0.5, Fmt(3).In(100), "50.000 %"},
		{"integer below scale", 999, Fmt(3).In(1000).Unit("B").AsInteger(), "999 B"},
		{"zero", 0, Fmt(3).Unit("sec"), "0 sec"},
		{"round to even", 2.5, Fmt(0).In(0), "2"},
		{"negative", -2048.0, Fmt(1), "-2.0 Ki"},
		{"nil", nil, DefaultNumberFormat(), "N/A"},
		{"not a number", "pending", DefaultNumberFormat(), "pending"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Format(tc.v, tc.nf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrinterJSONKeepsNumbers(t *testing.T) {
	p := NewPrinter(domain.FormatJSON)
	got, err := p.Format(1536, Fmt(1))
	require.NoError(t, err)
	assert.Equal(t, 1536.0, got)
}

func TestPrinterParseableBoostsPrecision(t *testing.T) {
	p := NewPrinter(domain.FormatParseableSummary)
	cases := []struct {
		v    float64
		nf   NumberFormat
		want string
	}{
		{12.5, Fmt(3), "12.500"},
		{0.5, Fmt(3), "0.500000"},
		{0.0005, Fmt(3), "0.000500000"},
		{0.0000005, Fmt(3), "0.000000500000"},
		{0.25, Fmt(3).In(100), "0.25000"},
		{1536, Fmt(3).AsInteger(), "1536"},
	}
	for _, tc := range cases {
		got, err := p.Format(tc.v, tc.nf)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "value %v", tc.v)
	}
}

func TestPrinterRejectsIllegalBase(t *testing.T) {
	for _, f := range []domain.Format{domain.FormatSummary, domain.FormatJSON, domain.FormatParseableVerbose} {
		_, err := NewPrinter(f).Format(10, Fmt(3).In(7))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalBase))
		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, 7, fe.Base)
	}
}

func TestRatio(t *testing.T) {
	p := NewPrinter(domain.FormatSummary)
	got, err := p.Ratio(10, 0, Fmt(3).In(0))
	require.NoError(t, err)
	assert.Equal(t, "N/A", got)

	got, err = p.Ratio(10, 4, Fmt(3).In(0).Unit("pods/sec"))
	require.NoError(t, err)
	assert.Equal(t, "2.500 pods/sec", got)

	_, err = p.Ratio(1, 0, Fmt(3).In(12))
	assert.ErrorIs(t, err, ErrIllegalBase)

	assert.Equal(t, 0.0, DivOrZero(3, 0))
	_, ok := SafeDiv(0, 0)
	assert.False(t, ok)
}
