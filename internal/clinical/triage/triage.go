// Package triage computes a clinical risk classification from a patient's
// latest vitals snapshot. Dashboards color-code on the resulting level, so
// the thresholds and the evaluation order are a fixed contract.
package triage

import (
	"strconv"
	"strings"
)

// Level is the urgency classification derived from a vitals snapshot.
type Level string

const (
	LevelNormal   Level = "NORMAL"
	LevelStable   Level = "STABLE"
	LevelUrgent   Level = "URGENT"
	LevelCritical Level = "CRITICAL"
)

// Vitals is the snapshot a triage assessment runs over. Zero-valued fields
// are treated as "not measured" and skip their checks; blood pressure is the
// charting convention "systolic/diastolic", e.g. "120/80".
type Vitals struct {
	BloodPressure string
	HeartRate     float64
	SpO2          float64
	Temperature   float64
}

// Result is a derived classification. It is never persisted; it is recomputed
// from the latest vitals sample on demand.
type Result struct {
	Score  int
	Level  Level
	Reason string
}

// Assess maps a vitals snapshot to a risk score and level. Findings are
// accumulated in a fixed evaluation order (blood pressure, heart rate, SpO2,
// temperature) and the reason string joins them in that same order.
func Assess(v Vitals) Result {
	if v == (Vitals{}) {
		return Result{Score: 0, Level: LevelNormal, Reason: "No vitals recorded"}
	}

	score := 0
	var reasons []string

	if sys, dia, ok := parseBloodPressure(v.BloodPressure); ok {
		switch {
		case sys >= 180 || dia >= 120:
			score += 5
			reasons = append(reasons, "Hypertensive Crisis")
		case sys >= 140 || dia >= 90:
			score += 2
			reasons = append(reasons, "Hypertension")
		case sys < 90 || dia < 60:
			score += 3
			reasons = append(reasons, "Hypotension")
		}
	}

	if v.HeartRate > 0 {
		switch {
		case v.HeartRate > 120:
			score += 3
			reasons = append(reasons, "Tachycardia")
		case v.HeartRate < 50:
			score += 2
			reasons = append(reasons, "Bradycardia")
		}
	}

	if v.SpO2 > 0 {
		switch {
		case v.SpO2 < 90:
			score += 5
			reasons = append(reasons, "Hypoxia (Critical)")
		case v.SpO2 < 95:
			score += 2
			reasons = append(reasons, "Hypoxia (Mild)")
		}
	}

	if v.Temperature > 0 {
		switch {
		case v.Temperature > 39:
			score += 3
			reasons = append(reasons, "High Fever")
		case v.Temperature < 35:
			score += 3
			reasons = append(reasons, "Hypothermia")
		}
	}

	reason := "Within normal limits"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	return Result{Score: score, Level: levelFor(score), Reason: reason}
}

func levelFor(score int) Level {
	switch {
	case score >= 5:
		return LevelCritical
	case score >= 3:
		return LevelUrgent
	case score >= 1:
		return LevelStable
	default:
		return LevelNormal
	}
}

// parseBloodPressure splits "systolic/diastolic". Malformed readings are
// skipped rather than failing the assessment.
func parseBloodPressure(bp string) (sys, dia float64, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(bp), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	sys, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	dia, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return sys, dia, true
}
