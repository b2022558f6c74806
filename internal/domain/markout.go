package domain

import "math"

// MarkoutTime is a closed sum type: nine numeric offsets (in hours relative
// to the triggering event) plus one symbolic variant bound to the dense
// event-source feed.
type MarkoutTime int

const (
	MarkoutNegative2 MarkoutTime = iota
	MarkoutNegative15
	MarkoutNegative1
	MarkoutNegative05
	MarkoutZero
	MarkoutPositive05
	MarkoutPositive1
	MarkoutPositive15
	MarkoutPositive2
	MarkoutBrontes
)

// NumericMarkouts lists the nine numeric variants in ascending order; they
// map bijectively to indices 0..=8 used by the indexed upstream source.
var NumericMarkouts = []MarkoutTime{
	MarkoutNegative2, MarkoutNegative15, MarkoutNegative1, MarkoutNegative05,
	MarkoutZero, MarkoutPositive05, MarkoutPositive1, MarkoutPositive15, MarkoutPositive2,
}

const markoutEpsilon = 1e-10

var markoutFloats = map[MarkoutTime]float64{
	MarkoutNegative2:  -2.0,
	MarkoutNegative15: -1.5,
	MarkoutNegative1:  -1.0,
	MarkoutNegative05: -0.5,
	MarkoutZero:       0.0,
	MarkoutPositive05: 0.5,
	MarkoutPositive1:  1.0,
	MarkoutPositive15: 1.5,
	MarkoutPositive2:  2.0,
}

var markoutStrings = map[MarkoutTime]string{
	MarkoutNegative2:  "-2.0",
	MarkoutNegative15: "-1.5",
	MarkoutNegative1:  "-1.0",
	MarkoutNegative05: "-0.5",
	MarkoutZero:       "0.0",
	MarkoutPositive05: "0.5",
	MarkoutPositive1:  "1.0",
	MarkoutPositive15: "1.5",
	MarkoutPositive2:  "2.0",
	MarkoutBrontes:    "brontes",
}

// String renders the decimal form for numeric variants, or "brontes" for the
// symbolic one.
func (m MarkoutTime) String() string {
	return markoutStrings[m]
}

// AsFloat returns the numeric offset, and false for the symbolic BRONTES
// variant (which has no float representation).
func (m MarkoutTime) AsFloat() (float64, bool) {
	v, ok := markoutFloats[m]
	return v, ok
}

// Index returns this variant's position in 0..=8 for the indexed upstream
// source selector, and false for BRONTES.
func (m MarkoutTime) Index() (int, bool) {
	for i, v := range NumericMarkouts {
		if v == m {
			return i, true
		}
	}
	return 0, false
}

// MarkoutFromFloat parses a numeric literal back into a MarkoutTime,
// requiring exact equality within ε=1e-10. No coercion — a value that is not
// within ε of any canonical offset yields (0, false).
func MarkoutFromFloat(value float64) (MarkoutTime, bool) {
	for _, m := range NumericMarkouts {
		canonical := markoutFloats[m]
		if math.Abs(value-canonical) < markoutEpsilon {
			return m, true
		}
	}
	return 0, false
}
