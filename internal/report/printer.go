package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

var ErrIllegalBase = errors.New("illegal base for prettyprint")

// FormatError reports a number format that cannot be applied.
type FormatError struct {
	Base int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %d; must be 0, 100, 1000 or 1024", ErrIllegalBase, e.Base)
}

func (e *FormatError) Unwrap() error { return ErrIllegalBase }

// NumberFormat controls how Printer renders a number.
type NumberFormat struct {
	Precision int
	Integer   bool
	Base      int
	Suffix    string
}

// Fmt returns a binary-scaled format with the given precision.
func Fmt(precision int) NumberFormat {
	return NumberFormat{Precision: precision, Base: 1024}
}

func DefaultNumberFormat() NumberFormat { return Fmt(5) }

func (nf NumberFormat) In(base int) NumberFormat {
	nf.Base = base
	return nf
}

func (nf NumberFormat) Unit(suffix string) NumberFormat {
	nf.Suffix = suffix
	return nf
}

func (nf NumberFormat) AsInteger() NumberFormat {
	nf.Integer = true
	return nf
}

func validBase(base int) bool {
	switch base {
	case 0, 100, 1000, 1024:
		return true
	}
	return false
}

var (
	largePrefixes = []string{"", "K", "M", "G", "T", "P"}
	smallPrefixes = []string{"m", "u", "n"}
)

// Printer renders numbers for one output format.
type Printer struct {
	format domain.Format
}

func NewPrinter(f domain.Format) Printer {
	return Printer{format: f}
}

func (p Printer) OutputFormat() domain.Format { return p.format }

// Format renders v. JSON formats get the unscaled number back, parseable formats a
// bare decimal string, and everything else a unit-scaled string. Values that are not
// numbers are returned in their string form.
func (p Printer) Format(v any, nf NumberFormat) (any, error) {
	if !validBase(nf.Base) {
		return nil, &FormatError{Base: nf.Base}
	}
	if v == nil {
		return "N/A", nil
	}
	num, ok := toFloat(v)
	if !ok {
		return fmt.Sprint(v), nil
	}
	switch {
	case p.format.IsJSON():
		return num, nil
	case p.format.IsParseable():
		return parseableNumber(num, nf), nil
	}
	return scaledNumber(num, nf), nil
}

// Ratio formats num/denom, or "N/A" when the quotient is undefined.
func (p Printer) Ratio(num, denom float64, nf NumberFormat) (any, error) {
	q, ok := SafeDiv(num, denom)
	if !ok {
		if !validBase(nf.Base) {
			return nil, &FormatError{Base: nf.Base}
		}
		return "N/A", nil
	}
	return p.Format(q, nf)
}

func parseableNumber(num float64, nf NumberFormat) string {
	if nf.Integer || num == 0 {
		return strconv.FormatInt(int64(num), 10)
	}
	precision := nf.Precision
	abs := math.Abs(num)
	switch {
	case nf.Base == 100:
		precision += 2
	case abs < 1e-6:
		precision += 9
	case abs < 1e-3:
		precision += 6
	case abs < 1:
		precision += 3
	}
	return fformat(num, precision)
}

func scaledNumber(num float64, nf NumberFormat) string {
	switch nf.Base {
	case 0:
		if nf.Suffix != "" {
			return fformat(num, nf.Precision) + " " + nf.Suffix
		}
		return fformat(num, nf.Precision)
	case 100:
		return fformat(num*100, nf.Precision) + " %"
	}
	infix := ""
	if nf.Base == 1024 {
		infix = "i"
	}
	base := float64(nf.Base)
	abs := math.Abs(num)
	for scale := len(largePrefixes) - 1; scale >= 1; scale-- {
		div := math.Pow(base, float64(scale))
		if abs >= div {
			return fmt.Sprintf("%s %s%s%s", fformat(num/div, nf.Precision), largePrefixes[scale], infix, nf.Suffix)
		}
	}
	if abs >= 1 || num == 0 {
		precision := nf.Precision
		if nf.Integer || num == 0 {
			precision = 0
		}
		return strings.TrimSpace(fformat(num, precision) + " " + nf.Suffix)
	}
	// Sub-unit values always scale by powers of 1000.
	mult := 1.0
	for _, prefix := range smallPrefixes {
		mult *= 1000
		if abs*mult >= 1 {
			return fmt.Sprintf("%s %s%s", fformat(num*mult, nf.Precision), prefix, nf.Suffix)
		}
	}
	return fmt.Sprintf("%s p%s", fformat(num*mult*1000, nf.Precision), nf.Suffix)
}

// fformat prints num with a fixed number of decimals, or as a rounded integer when
// precision is zero.
func fformat(num float64, precision int) string {
	if precision >= 1 {
		return strconv.FormatFloat(num, 'f', precision, 64)
	}
	return strconv.FormatInt(int64(math.RoundToEven(num)), 10)
}

// FormatFixed exposes fformat for workload extensions.
func FormatFixed(num float64, precision int) string {
	return fformat(num, precision)
}
