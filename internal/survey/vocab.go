// Package survey converts raw PISA teacher-questionnaire responses into
// engineered numeric indices: a shared response vocabulary, prefix-based
// column resolution and per-group aggregation.
//
// The vocabulary is deliberately a single implementation shared by every
// stage that coerces survey text to numbers; earlier revisions of the
// pipeline carried drifting copies of it.
package survey

import (
	"math"
	"strconv"
	"strings"
)

// Vocabulary maps survey response text to numeric codes. It is pure and
// safe for concurrent use after construction.
type Vocabulary struct {
	terms map[string]float64
}

var binaryTerms = map[string]float64{
	"checked":       1,
	"yes":           1,
	"sim":           1,
	"true":          1,
	"1":             1,
	"y":             1,
	"s":             1,
	"completed":     1,
	"not checked":   0,
	"no":            0,
	"não":           0,
	"nao":           0,
	"false":         0,
	"0":             0,
	"n":             0,
	"not completed": 0,
}

// NewVocabulary builds the vocabulary for the given agreement scale width.
// agreementMax must be 4 or 5: the questionnaire shipped both a 4-point
// scale (no neutral midpoint) and a 5-point one across versions.
func NewVocabulary(agreementMax int) *Vocabulary {
	t := make(map[string]float64, 32)
	switch agreementMax {
	case 4:
		t["strongly disagree"] = 1
		t["disagree"] = 2
		t["agree"] = 3
		t["strongly agree"] = 4
	default:
		t["strongly disagree"] = 1
		t["disagree"] = 2
		t["neutral"] = 3
		t["agree"] = 4
		t["strongly agree"] = 5
	}
	// Extent scale (1-4).
	t["not at all"] = 1
	t["very little"] = 2
	t["to some extent"] = 3
	t["to a large extent"] = 4
	// Frequency scale (1-4).
	t["never or hardly ever"] = 1
	t["once a month or less"] = 2
	t["once a week or more"] = 3
	t["several times a week"] = 4
	for k, v := range binaryTerms {
		t[k] = v
	}
	return &Vocabulary{terms: t}
}

// Normalize maps one raw cell value to a float. The second return value is
// false when the value is missing or unrecognized.
//
// Resolution order: missing → vocabulary lookup (case-insensitive, trimmed)
// → direct numeric parse (accepting a comma decimal separator) → missing.
func (v *Vocabulary) Normalize(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "na" || s == "n/a" || s == "nan" {
		return math.NaN(), false
	}
	if x, ok := v.terms[s]; ok {
		return x, true
	}
	num := s
	if strings.Count(num, ",") == 1 && !strings.Contains(num, ".") {
		num = strings.Replace(num, ",", ".", 1)
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		return f, true
	}
	return math.NaN(), false
}
