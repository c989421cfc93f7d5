// Package ranges flags lab and vital values against tabulated reference
// ranges, selecting the tightest demographic scope available for the patient.
package ranges

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag classifies a measured value against its reference range.
type Flag string

const (
	FlagNormal       Flag = "Normal"
	FlagLow          Flag = "Low"
	FlagCriticalLow  Flag = "Critical Low"
	FlagHigh         Flag = "High"
	FlagCriticalHigh Flag = "Critical High"
)

// Scope is the demographic a reference range applies to.
type Scope string

const (
	ScopeInfant      Scope = "infant" // age < 1
	ScopeChild       Scope = "child"  // age < 12
	ScopeAdultMale   Scope = "adult_male"
	ScopeAdultFemale Scope = "adult_female"
	ScopeAdult       Scope = "adult"
	ScopeAll         Scope = "all"
)

// Range is an inclusive reference interval.
type Range struct {
	Scope Scope
	Min   float64
	Max   float64
}

// Test is one reference-range table entry. Ranges keep their declared order
// so the final fallback (first defined range) is deterministic.
type Test struct {
	Name   string
	Unit   string
	Ranges []Range
}

// Finding is the outcome of analyzing a value. Range is the human-readable
// interval the value was judged against, e.g. "12 - 15.5".
type Finding struct {
	Flag  Flag
	Range string
	Unit  string
}

// Analyze flags a measured value for the given test against the reference
// table, picking the range scope that matches the patient's age and sex.
//
// A non-numeric value or an unknown category/test yields a neutral Normal
// finding rather than an error, so a malformed manual entry never blocks the
// record-save path.
func Analyze(category, testName string, value interface{}, age int, sex string) Finding {
	test, ok := lookup(category, testName)
	if !ok {
		return Finding{Flag: FlagNormal}
	}

	num, ok := toFloat(value)
	if !ok {
		return Finding{Flag: FlagNormal, Unit: test.Unit}
	}

	r, ok := selectRange(test, age, sex)
	if !ok {
		return Finding{Flag: FlagNormal, Unit: test.Unit}
	}

	finding := Finding{
		Flag:  FlagNormal,
		Range: fmt.Sprintf("%s - %s", formatBound(r.Min), formatBound(r.Max)),
		Unit:  test.Unit,
	}

	switch {
	case num < r.Min:
		finding.Flag = FlagLow
		if num < 0.8*r.Min {
			finding.Flag = FlagCriticalLow
		}
	case num > r.Max:
		finding.Flag = FlagHigh
		if num > 1.2*r.Max {
			finding.Flag = FlagCriticalHigh
		}
	}
	return finding
}

// selectRange applies the scope fallback chain: infant, child, sex-specific
// adult (age 12 and over only), generic adult, universal, then the first
// declared range. The generic adult scope is the shared fallback for every
// age, so a child with no pediatric band degrades to it before the
// universal range. Skipping a level silently degrades to a looser range,
// so the order is exact.
func selectRange(test Test, age int, sex string) (Range, bool) {
	find := func(scope Scope) (Range, bool) {
		for _, r := range test.Ranges {
			if r.Scope == scope {
				return r, true
			}
		}
		return Range{}, false
	}

	if age < 1 {
		if r, ok := find(ScopeInfant); ok {
			return r, true
		}
	}
	if age < 12 {
		if r, ok := find(ScopeChild); ok {
			return r, true
		}
	} else {
		switch strings.ToLower(sex) {
		case "male", "m":
			if r, ok := find(ScopeAdultMale); ok {
				return r, true
			}
		case "female", "f":
			if r, ok := find(ScopeAdultFemale); ok {
				return r, true
			}
		}
	}
	if r, ok := find(ScopeAdult); ok {
		return r, true
	}
	if r, ok := find(ScopeAll); ok {
		return r, true
	}
	if len(test.Ranges) > 0 {
		return test.Ranges[0], true
	}
	return Range{}, false
}

func lookup(category, testName string) (Test, bool) {
	tests, ok := referenceTables[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return Test{}, false
	}
	name := strings.ToLower(strings.TrimSpace(testName))
	for _, t := range tests {
		if strings.ToLower(t.Name) == name {
			return t, true
		}
	}
	return Test{}, false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
