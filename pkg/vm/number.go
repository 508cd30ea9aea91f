package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// decimalLiteral is the numeric grammar accepted by ToNumber from SWF 5 on.
// A bare trailing exponent marker ("1e", "1e+") is accepted and ignored.
var decimalLiteral = regexp2.MustCompile(`^[ \t\r\n]*[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d*)?$`, regexp2.ECMAScript)

const radixDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// DoubleToString formats a number the way the player does: at most 15
// significant digits, two-digit exponents shortened, and the
// [0.00001, 0.0001) range forced into fixed notation.
func DoubleToString(d float64) string {
	if math.IsNaN(d) {
		return "NaN"
	}
	if math.IsInf(d, 1) {
		return "Infinity"
	}
	if math.IsInf(d, -1) {
		return "-Infinity"
	}
	if d == 0 {
		return "0" // also -0
	}

	abs := math.Abs(d)
	if abs < 0.0001 && abs >= 0.00001 {
		// %.15g would go exponential here; the player prints decimals.
		s := strconv.FormatFloat(d, 'f', 19, 64)
		return strings.TrimRight(s, "0")
	}

	s := strconv.FormatFloat(d, 'g', 15, 64)
	if pos := strings.IndexByte(s, 'e'); pos >= 0 && pos+2 < len(s) && s[pos+2] == '0' {
		s = s[:pos+2] + s[pos+3:]
	}
	return s
}

// DoubleToStringRadix formats the integer part of d in the given radix
// (2..36), as Number.prototype.toString(radix) does.
func DoubleToStringRadix(d float64, radix int) string {
	if radix == 10 || radix < 2 || radix > 36 {
		return DoubleToString(d)
	}
	if math.IsNaN(d) {
		return "NaN"
	}
	if math.IsInf(d, 0) {
		if d < 0 {
			return "-Infinity"
		}
		return "Infinity"
	}

	negative := d < 0
	left := math.Floor(math.Abs(d))
	if left < 1 {
		return "0"
	}
	base := float64(radix)
	var buf []byte
	for left > 0 {
		n := left
		left = math.Floor(left / base)
		n -= left * base
		buf = append(buf, radixDigits[int(n)])
	}
	if negative {
		buf = append(buf, '-')
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ParseNumber converts a string to a number using the SWF 5+ rules.
func ParseNumber(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	if d, ok := parseNonDecimalInt(s); ok {
		return d
	}
	return parseDecimal(s)
}

// parseDecimal applies the strict decimal grammar.
func parseDecimal(s string) float64 {
	ok, err := decimalLiteral.MatchString(s)
	if err != nil || !ok {
		return math.NaN()
	}
	s = strings.TrimLeft(s, " \t\r\n")
	s = trimDanglingExponent(s)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return d
		}
		return math.NaN()
	}
	return d
}

func trimDanglingExponent(s string) string {
	n := len(s)
	if n > 0 && (s[n-1] == '+' || s[n-1] == '-') {
		n--
	}
	if n > 0 && (s[n-1] == 'e' || s[n-1] == 'E') {
		return s[:n-1]
	}
	return s
}

// parseNonDecimalInt recognises "0x" hexadecimal (with an optional '-'
// after the prefix) and octal literals made only of 0-7 digits.
func parseNonDecimalInt(s string) (float64, bool) {
	if len(s) < 3 {
		return 0, false
	}
	if s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits := s[2:]
		negative := false
		if digits[0] == '-' {
			negative = true
			digits = digits[1:]
		} else if digits[0] == '+' {
			digits = digits[1:]
		}
		d := parsePositiveInt(digits, 16)
		if negative {
			d = -d
		}
		return d, true
	}

	if s[0] != '0' && !((s[0] == '-' || s[0] == '+') && s[1] == '0') {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return 0, false
		}
	}
	negative := s[0] == '-'
	digits := s
	if s[0] == '-' || s[0] == '+' {
		digits = s[1:]
	}
	d := parsePositiveInt(digits, 8)
	if negative {
		d = -d
	}
	return d, true
}

// parsePositiveInt parses an unsigned 32-bit integer that must consume the
// whole string; anything else is NaN.
func parsePositiveInt(s string, base int) float64 {
	if s == "" {
		return math.NaN()
	}
	u, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return math.NaN()
	}
	return float64(u)
}

// parseLooseNumber mimics the SWF 4 behaviour: the longest numeric prefix
// after leading whitespace is used, and no prefix at all yields 0.
func parseLooseNumber(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	d, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return d
		}
		return 0
	}
	return d
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
