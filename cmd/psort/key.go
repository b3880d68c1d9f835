package main

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/king54346/TimSort/TimSort"
)

// line is an input line with its sort key extracted once.
type line struct {
	text string
	key  string
	num  float64
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// field returns the k-th (1-based) whitespace separated field of s, the whole
// line for k == 0 and "" when s has fewer fields.
func field(s string, k int) string {
	if k == 0 {
		return s
	}
	fs := strings.Fields(s)
	if k > len(fs) {
		return ""
	}
	return fs[k-1]
}

// parseNumber reads the number at the start of s. Lines without one get NaN
// and sort before every number.
func parseNumber(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range
		return math.NaN()
	}
	return f
}

func (o *options) parse(s string, _ int) line {
	l := line{text: s, key: field(s, o.key)}
	if o.numeric {
		l.num = parseNumber(l.key)
	}
	return l
}

// comparator orders lines by key. Reversing negates the comparison rather
// than the output, so equal keys stay in input order.
func (o *options) comparator() func(x, y line) int {
	cmp := func(x, y line) int {
		return TimSort.Compare(x.key, y.key)
	}
	if o.numeric {
		cmp = func(x, y line) int {
			return TimSort.Compare(x.num, y.num)
		}
	}
	if o.reverse {
		forward := cmp
		cmp = func(x, y line) int {
			return forward(y, x)
		}
	}
	return cmp
}
