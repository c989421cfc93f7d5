package triage

import (
	"strings"
	"testing"
)

func TestAssessNoVitals(t *testing.T) {
	r := Assess(Vitals{})
	if r.Score != 0 || r.Level != LevelNormal {
		t.Errorf("expected score 0 NORMAL, got %d %s", r.Score, r.Level)
	}
}

func TestAssessCriticalCombination(t *testing.T) {
	r := Assess(Vitals{
		BloodPressure: "190/125",
		HeartRate:     130,
		SpO2:          88,
		Temperature:   40,
	})

	if r.Score < 16 {
		t.Errorf("expected score >= 16, got %d", r.Score)
	}
	if r.Level != LevelCritical {
		t.Errorf("expected CRITICAL, got %s", r.Level)
	}

	want := []string{"Hypertensive Crisis", "Tachycardia", "Hypoxia (Critical)", "High Fever"}
	last := -1
	for _, label := range want {
		idx := strings.Index(r.Reason, label)
		if idx < 0 {
			t.Fatalf("reason %q missing %q", r.Reason, label)
		}
		if idx < last {
			t.Fatalf("reason %q lists %q out of order", r.Reason, label)
		}
		last = idx
	}
}

func TestAssessThresholds(t *testing.T) {
	cases := []struct {
		name   string
		vitals Vitals
		score  int
		level  Level
		reason string
	}{
		{"elevated bp", Vitals{BloodPressure: "145/92"}, 2, LevelStable, "Hypertension"},
		{"hypotension", Vitals{BloodPressure: "85/55"}, 3, LevelUrgent, "Hypotension"},
		{"bradycardia", Vitals{HeartRate: 45}, 2, LevelStable, "Bradycardia"},
		{"tachycardia", Vitals{HeartRate: 121}, 3, LevelUrgent, "Tachycardia"},
		{"mild hypoxia", Vitals{SpO2: 94}, 2, LevelStable, "Hypoxia (Mild)"},
		{"critical hypoxia", Vitals{SpO2: 89}, 5, LevelCritical, "Hypoxia (Critical)"},
		{"high fever", Vitals{Temperature: 39.5}, 3, LevelUrgent, "High Fever"},
		{"hypothermia", Vitals{Temperature: 34.5}, 3, LevelUrgent, "Hypothermia"},
		{"all normal", Vitals{BloodPressure: "120/80", HeartRate: 72, SpO2: 98, Temperature: 36.8}, 0, LevelNormal, "Within normal limits"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Assess(tc.vitals)
			if r.Score != tc.score {
				t.Errorf("score: got %d, want %d", r.Score, tc.score)
			}
			if r.Level != tc.level {
				t.Errorf("level: got %s, want %s", r.Level, tc.level)
			}
			if !strings.Contains(r.Reason, tc.reason) {
				t.Errorf("reason %q missing %q", r.Reason, tc.reason)
			}
		})
	}
}

func TestAssessBoundaries(t *testing.T) {
	// 180/120 is crisis, 179/119 is plain hypertension.
	if r := Assess(Vitals{BloodPressure: "180/80"}); r.Score != 5 {
		t.Errorf("systolic 180 should score 5, got %d", r.Score)
	}
	if r := Assess(Vitals{BloodPressure: "179/119"}); r.Score != 2 {
		t.Errorf("179/119 should score 2, got %d", r.Score)
	}
	// spo2 95 is normal, 90 is mild.
	if r := Assess(Vitals{SpO2: 95}); r.Score != 0 {
		t.Errorf("spo2 95 should score 0, got %d", r.Score)
	}
	if r := Assess(Vitals{SpO2: 90}); r.Score != 2 {
		t.Errorf("spo2 90 should score 2, got %d", r.Score)
	}
}

func TestAssessSpO2Monotonic(t *testing.T) {
	base := Vitals{BloodPressure: "120/80", HeartRate: 72, Temperature: 36.8}
	prev := -1
	for spo2 := 100.0; spo2 >= 70; spo2-- {
		v := base
		v.SpO2 = spo2
		score := Assess(v).Score
		if prev >= 0 && score < prev {
			t.Fatalf("score decreased from %d to %d as spo2 dropped to %.0f", prev, score, spo2)
		}
		prev = score
	}
}

func TestAssessMalformedBloodPressure(t *testing.T) {
	for _, bp := range []string{"", "120", "high/low", "120-80"} {
		r := Assess(Vitals{BloodPressure: bp, HeartRate: 72})
		if r.Score != 0 {
			t.Errorf("malformed bp %q should contribute nothing, got score %d", bp, r.Score)
		}
	}
}
