package insights

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"salaryRanges": [
		{"role": "Junior Engineer", "min": 60000, "max": 90000, "median": 75000, "location": "Remote"},
		{"role": "Engineer", "min": 80000, "max": 120000, "median": 100000, "location": "Remote"},
		{"role": "Senior Engineer", "min": 110000, "max": 160000, "median": 135000, "location": "Remote"},
		{"role": "Staff Engineer", "min": 140000, "max": 200000, "median": 170000, "location": "Remote"},
		{"role": "Engineering Manager", "min": 150000, "max": 210000, "median": 180000, "location": "Remote"}
	],
	"growthRate": 3.4,
	"demandLevel": "High",
	"topSkills": ["Go", "Kubernetes", "SQL", "AWS", "Terraform"],
	"marketOutlook": "POSITIVE",
	"keyTrends": ["AI tooling", "Platform engineering", "Remote work", "Cost optimization", "Security"],
	"recommendedSkills": ["Rust", "Observability", "System design", "LLM integration", "GraphQL"]
}`

func TestParse_ValidPayload(t *testing.T) {
	in, err := Parse(validPayload)
	require.NoError(t, err)

	assert.Len(t, in.SalaryRanges, 5)
	assert.Equal(t, "Junior Engineer", in.SalaryRanges[0].Role)
	assert.InDelta(t, 3.4, in.GrowthRate, 0.001)
	assert.Equal(t, DemandHigh, in.DemandLevel)
	assert.Equal(t, OutlookPositive, in.MarketOutlook, "uppercase outlook is normalized")
	assert.Len(t, in.TopSkills, 5)
	assert.Len(t, in.KeyTrends, 5)
	assert.Len(t, in.RecommendedSkills, 5)
}

func TestParse_StripsFormattingNoise(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n" + validPayload + "\n```"},
		{"bare fence", "```\n" + validPayload + "\n```"},
		{"fence with surrounding whitespace", "  \n\n```json\n" + validPayload + "\n```  \n"},
		{"leading prose", "Here is the requested data:\n\n" + validPayload},
		{"prose before fence", "Sure! Here you go:\n```json\n" + validPayload + "\n```"},
		{"trailing prose", validPayload + "\n\nLet me know if you need anything else."},
	}

	want, err := Parse(validPayload)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, got, "wrapped input must parse identically to the unwrapped payload")
		})
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
		{"empty fenced block", "```json\n```"},
		{"not JSON", "the market is looking great this year"},
		{"truncated JSON is not repaired", validPayload[:len(validPayload)-40]},
		{"wrong type for growthRate", `{"growthRate": "fast"}`},
		{"missing salary ranges", `{
			"growthRate": 2.0, "demandLevel": "High", "marketOutlook": "Positive",
			"topSkills": ["a"], "keyTrends": ["b"], "recommendedSkills": ["c"]
		}`},
		{"too few salary ranges", `{
			"salaryRanges": [{"role": "Engineer", "min": 1, "max": 3, "median": 2, "location": "Remote"}],
			"growthRate": 2.0, "demandLevel": "High", "marketOutlook": "Positive",
			"topSkills": ["a"], "keyTrends": ["b"], "recommendedSkills": ["c"]
		}`},
		{"unknown demand level", strings.Replace(validPayload, `"High"`, `"Extreme"`, 1)},
		{"unknown outlook", strings.Replace(validPayload, `"POSITIVE"`, `"BULLISH"`, 1)},
		{"median above max", strings.Replace(validPayload,
			`"min": 60000, "max": 90000, "median": 75000`,
			`"min": 60000, "max": 90000, "median": 95000`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Parse(tt.input)
			assert.Nil(t, in)

			var pe *ParseError
			require.ErrorAs(t, err, &pe, "all parser failures must be ParseError")
		})
	}
}

func TestDemandLevelNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want DemandLevel
	}{
		{`"High"`, DemandHigh},
		{`"HIGH"`, DemandHigh},
		{`"medium"`, DemandMedium},
		{`"LOW"`, DemandLow},
	}

	for _, tt := range tests {
		var d DemandLevel
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
		assert.Equal(t, tt.want, d)
		assert.True(t, d.Valid())
	}

	var d DemandLevel
	require.NoError(t, json.Unmarshal([]byte(`"whatever"`), &d))
	assert.False(t, d.Valid())
}

func TestMarketOutlookNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want MarketOutlook
	}{
		{`"POSITIVE"`, OutlookPositive},
		{`"Neutral"`, OutlookNeutral},
		{`"negative"`, OutlookNegative},
	}

	for _, tt := range tests {
		var o MarketOutlook
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &o))
		assert.Equal(t, tt.want, o)
		assert.True(t, o.Valid())
	}
}
