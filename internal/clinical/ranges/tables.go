package ranges

// referenceTables holds the tabulated reference ranges, keyed by lower-case
// category. Values follow standard laboratory reference intervals.
var referenceTables = map[string][]Test{
	"fbc": {
		{
			Name: "Hemoglobin",
			Unit: "g/dL",
			Ranges: []Range{
				{Scope: ScopeInfant, Min: 10, Max: 18},
				{Scope: ScopeChild, Min: 11, Max: 14.5},
				{Scope: ScopeAdultMale, Min: 13.5, Max: 17.5},
				{Scope: ScopeAdultFemale, Min: 12, Max: 15.5},
			},
		},
		{
			Name: "WBC",
			Unit: "x10^9/L",
			Ranges: []Range{
				{Scope: ScopeInfant, Min: 6, Max: 17.5},
				{Scope: ScopeChild, Min: 5, Max: 14.5},
				{Scope: ScopeAdult, Min: 4, Max: 11},
			},
		},
		{
			Name: "Platelets",
			Unit: "x10^9/L",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 150, Max: 450},
			},
		},
		{
			Name: "Hematocrit",
			Unit: "%",
			Ranges: []Range{
				{Scope: ScopeAdultMale, Min: 41, Max: 50},
				{Scope: ScopeAdultFemale, Min: 36, Max: 44},
				{Scope: ScopeChild, Min: 33, Max: 43},
			},
		},
	},
	"metabolic": {
		{
			Name: "Glucose",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 70, Max: 100},
			},
		},
		{
			Name: "Creatinine",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAdultMale, Min: 0.7, Max: 1.3},
				{Scope: ScopeAdultFemale, Min: 0.6, Max: 1.1},
				{Scope: ScopeChild, Min: 0.3, Max: 0.7},
			},
		},
		{
			Name: "Sodium",
			Unit: "mmol/L",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 135, Max: 145},
			},
		},
		{
			Name: "Potassium",
			Unit: "mmol/L",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 3.5, Max: 5.0},
			},
		},
		{
			Name: "Urea",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAdult, Min: 7, Max: 20},
				{Scope: ScopeChild, Min: 5, Max: 18},
			},
		},
	},
	"lipids": {
		{
			Name: "Total Cholesterol",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 125, Max: 200},
			},
		},
		{
			Name: "LDL",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 0, Max: 100},
			},
		},
		{
			Name: "HDL",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAdultMale, Min: 40, Max: 60},
				{Scope: ScopeAdultFemale, Min: 50, Max: 60},
				{Scope: ScopeAll, Min: 40, Max: 60},
			},
		},
		{
			Name: "Triglycerides",
			Unit: "mg/dL",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 0, Max: 150},
			},
		},
	},
	"vitals": {
		{
			Name: "Heart Rate",
			Unit: "bpm",
			Ranges: []Range{
				{Scope: ScopeInfant, Min: 100, Max: 160},
				{Scope: ScopeChild, Min: 70, Max: 120},
				{Scope: ScopeAdult, Min: 60, Max: 100},
			},
		},
		{
			Name: "SpO2",
			Unit: "%",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 95, Max: 100},
			},
		},
		{
			Name: "Temperature",
			Unit: "°C",
			Ranges: []Range{
				{Scope: ScopeAll, Min: 36.1, Max: 37.2},
			},
		},
		{
			Name: "Respiratory Rate",
			Unit: "breaths/min",
			Ranges: []Range{
				{Scope: ScopeInfant, Min: 30, Max: 60},
				{Scope: ScopeChild, Min: 20, Max: 30},
				{Scope: ScopeAdult, Min: 12, Max: 20},
			},
		},
	},
}
