// Package ingredient turns free-text recipe ingredient lines into structured
// quantity, unit and name values and assigns grocery categories.
package ingredient

import (
	"strconv"
	"strings"
)

// Parsed is the structured form of one ingredient line. Quantity is nil and
// Unit empty when the line does not carry them.
type Parsed struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// HasQuantity reports whether a leading quantity was recognised.
func (p Parsed) HasQuantity() bool { return p.Quantity != nil }

// ParseLine decomposes a line such as "1 1/2 cups sugar". It never fails:
// lines without a leading quantity come back as a name-only result, and any
// internal failure degrades to the trimmed input as the name.
func ParseLine(text string) (out Parsed) {
	defer func() {
		if r := recover(); r != nil {
			out = Parsed{Name: strings.TrimSpace(text)}
		}
	}()
	return parseLine(text)
}

func parseLine(text string) Parsed {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Parsed{}
	}
	qty, used, ok := parseQuantity(tokens)
	if !ok {
		return Parsed{Name: strings.Join(tokens, " ")}
	}
	rest := tokens[used:]
	var unit string
	if len(rest) > 0 && IsUnit(rest[0]) {
		unit = rest[0]
		rest = rest[1:]
	}
	name := strings.Join(rest, " ")
	if len(name) >= 3 && strings.EqualFold(name[:3], "of ") {
		name = name[3:]
	}
	return Parsed{Name: name, Quantity: &qty, Unit: unit}
}

// ParseLines parses every non-blank line of text.
func ParseLines(text string) []Parsed {
	var out []Parsed
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, ParseLine(line))
	}
	return out
}

// parseQuantity reads a quantity from the leading tokens and reports how many
// tokens it consumed. A bare integer followed by a fraction is a mixed number.
func parseQuantity(tokens []string) (float64, int, bool) {
	first := tokens[0]
	if n, ok := parseInteger(first); ok {
		if len(tokens) > 1 {
			if frac, ok := parseFraction(tokens[1]); ok {
				return n + frac, 2, true
			}
		}
		return n, 1, true
	}
	if frac, ok := parseFraction(first); ok {
		return frac, 1, true
	}
	if d, ok := parseDecimal(first); ok {
		return d, 1, true
	}
	return 0, 0, false
}

func parseInteger(tok string) (float64, bool) {
	if !allDigits(tok) {
		return 0, false
	}
	n, err := strconv.ParseFloat(tok, 64)
	return n, err == nil
}

// vulgarFractions maps the single-rune fractions common in pasted recipes.
var vulgarFractions = map[string]float64{
	"½": 0.5, "⅓": 1.0 / 3, "⅔": 2.0 / 3, "¼": 0.25, "¾": 0.75, "⅛": 0.125,
}

// parseFraction accepts "a/b", "a-b" and single-rune vulgar fractions.
func parseFraction(tok string) (float64, bool) {
	if v, ok := vulgarFractions[tok]; ok {
		return v, true
	}
	sep := strings.IndexAny(tok, "/-")
	if sep <= 0 || sep == len(tok)-1 {
		return 0, false
	}
	num, den := tok[:sep], tok[sep+1:]
	if !allDigits(num) || !allDigits(den) {
		return 0, false
	}
	a, _ := strconv.ParseFloat(num, 64)
	b, _ := strconv.ParseFloat(den, 64)
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

func parseDecimal(tok string) (float64, bool) {
	dot := strings.IndexByte(tok, '.')
	if dot < 0 || strings.Count(tok, ".") != 1 {
		return 0, false
	}
	intPart, fracPart := tok[:dot], tok[dot+1:]
	if fracPart == "" || (intPart != "" && !allDigits(intPart)) || !allDigits(fracPart) {
		return 0, false
	}
	d, err := strconv.ParseFloat(tok, 64)
	return d, err == nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
