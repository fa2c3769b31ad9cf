package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "untagged fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding prose",
			input: "Sure! Here it is: {\"a\":1} Hope this helps.",
			want:  `{"a":1}`,
		},
		{
			name:  "concatenated objects kept verbatim",
			input: `{"a":1}{"b":2}`,
			want:  `{"a":1}{"b":2}`,
		},
		{
			name:  "no braces kept as-is",
			input: "```text\nhello there\n```",
			want:  "hello there",
		},
		{
			name:  "closing brace before opening",
			input: "} oops {",
			want:  "} oops {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.input))
		})
	}
}

func TestInterpret_IdempotentOnCleanJSON(t *testing.T) {
	clean := `{"recommendation":"짧게 산책하세요","reason":"기온 5.0도, PM10 80.0","safety_tips":["우비를 입히세요","발을 닦아주세요"]}`

	var want Recommendation
	require.NoError(t, json.Unmarshal([]byte(clean), &want))

	got, err := Interpret(FamilyStructured, clean)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInterpret_StripsFence(t *testing.T) {
	got, err := Interpret(FamilyStructured, "```json\n{\"recommendation\":\"ok\",\"reason\":\"r\"}\n```")
	require.NoError(t, err)

	rec := got.(Recommendation)
	assert.Equal(t, "ok", rec.Recommendation)
	assert.Equal(t, "r", rec.Reason)
	assert.Empty(t, rec.SafetyTips)
	assert.NotNil(t, rec.SafetyTips)
}

func TestInterpret_Route(t *testing.T) {
	raw := "Here are some routes:\n```json\n{\"routes\":[{\"name\":\"한강공원\",\"description\":\"강변 산책로\",\"distance_km\":2.5}]}\n```"

	got, err := Interpret(FamilyRoute, raw)
	require.NoError(t, err)

	routes := got.(RouteSuggestion)
	require.Len(t, routes.Routes, 1)
	assert.Equal(t, "한강공원", routes.Routes[0].Name)
	assert.Equal(t, 2.5, routes.Routes[0].DistanceKm)
}

func TestInterpret_FreeTextSkipsExtraction(t *testing.T) {
	got, err := Interpret(FamilyFreeText, "  안녕하세요! {not json}  ")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요! {not json}", got)
}

func TestInterpret_EmptyForEveryFamily(t *testing.T) {
	for _, family := range []Family{FamilyStructured, FamilyRoute, FamilyFreeText} {
		t.Run(family.String(), func(t *testing.T) {
			_, err := Interpret(family, " \n\t ")
			require.Error(t, err)
			assert.Equal(t, KindGenerationEmpty, KindOf(err))
			assert.Equal(t, StatusGenerationFailed, StatusOf(err))
		})
	}
}

func TestInterpret_Unparsable(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		raw    string
	}{
		{"prose only", FamilyStructured, "I think you should walk."},
		{"broken object", FamilyStructured, `{"recommendation": "ok",`},
		{"concatenated objects", FamilyStructured, `{"recommendation":"a"}{"reason":"b"}`},
		{"null literal", FamilyStructured, "null"},
		{"missing recommendation", FamilyStructured, `{"reason":"r"}`},
		{"wrong tips type", FamilyStructured, `{"recommendation":"a","safety_tips":"one"}`},
		{"missing routes", FamilyRoute, `{"name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpret(tt.family, tt.raw)
			require.Error(t, err)
			assert.Equal(t, KindGenerationUnparsable, KindOf(err))
		})
	}
}
