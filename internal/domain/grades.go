package domain

import "strings"

// Quality is an assessment quality grade.
type Quality string

const (
	QualityA          Quality = "A"
	QualityB          Quality = "B"
	QualityC          Quality = "C"
	QualityFA         Quality = "FA"
	QualityFL         Quality = "FL"
	QualityList       Quality = "List"
	QualityGA         Quality = "GA"
	QualityStart      Quality = "Start"
	QualityStub       Quality = "Stub"
	QualityUnassessed Quality = "Unassessed"
)

var qualities = map[Quality]struct{}{
	QualityA: {}, QualityB: {}, QualityC: {}, QualityFA: {}, QualityFL: {},
	QualityList: {}, QualityGA: {}, QualityStart: {}, QualityStub: {}, QualityUnassessed: {},
}

// Importance is an assessment importance grade.
type Importance string

const (
	ImportanceTop        Importance = "Top"
	ImportanceHigh       Importance = "High"
	ImportanceMid        Importance = "Mid"
	ImportanceLow        Importance = "Low"
	ImportanceUnassessed Importance = "Unassessed"
)

// stripClass removes the "-Class" qualifier the assessment services append.
func stripClass(raw string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "-Class"))
}

// ParseQuality strips the qualifier and reports whether the grade is known.
func ParseQuality(raw string) (Quality, bool) {
	q := Quality(stripClass(raw))
	_, ok := qualities[q]
	return q, ok
}

// QualityOrUnassessed coerces unknown grades to Unassessed.
func QualityOrUnassessed(raw string) Quality {
	if q, ok := ParseQuality(raw); ok {
		return q
	}
	return QualityUnassessed
}

// ParseImportance strips the qualifier; anything other than the four ranked
// grades becomes Unassessed.
func ParseImportance(raw string) Importance {
	switch imp := Importance(stripClass(raw)); imp {
	case ImportanceTop, ImportanceHigh, ImportanceMid, ImportanceLow:
		return imp
	default:
		return ImportanceUnassessed
	}
}
