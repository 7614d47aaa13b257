package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Fraction is a reduced rational used for rhythmic types. Comparable, so it
// participates in structural equality of events.
type Fraction struct {
	Num int
	Den int
}

// Frac reduces num/den to lowest terms.
func Frac(num, den int) Fraction {
	if den == 0 {
		den = 1
	}
	if den < 0 {
		num, den = -num, -den
	}
	d := gcd(abs(num), den)
	if d > 1 {
		num /= d
		den /= d
	}
	return Fraction{Num: num, Den: den}
}

func (f Fraction) String() string {
	return strconv.Itoa(f.Num) + "/" + strconv.Itoa(f.Den)
}

// ParseFraction accepts "n/d" or a bare integer "n".
func ParseFraction(s string) (Fraction, error) {
	numStr, denStr, ok := strings.Cut(s, "/")
	num, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil {
		return Fraction{}, fmt.Errorf("bad fraction %q", s)
	}
	den := 1
	if ok {
		den, err = strconv.Atoi(strings.TrimSpace(denStr))
		if err != nil || den == 0 {
			return Fraction{}, fmt.Errorf("bad fraction %q", s)
		}
	}
	return Frac(num, den), nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
