package geminiservice

import "Walkmate_V0.1/internal/assistant"

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	Controlled generation: tells Gemini the exact JSON shape of its reply
=================================================================================*/

// Schema maps to the OpenAPI subset Gemini accepts as responseSchema.
type Schema struct {
	// Type is "OBJECT", "ARRAY", "STRING", "NUMBER" or "INTEGER".
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// RecommendationSchema is the shape of walk_check, weather_info and cloth_recommend replies.
var RecommendationSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"recommendation": {Type: "STRING", Description: "Short answer in Korean."},
		"reason":         {Type: "STRING", Description: "Why, citing the weather and the pet."},
		"safety_tips": {
			Type:  "ARRAY",
			Items: &Schema{Type: "STRING"},
		},
	},
	Required: []string{"recommendation", "reason", "safety_tips"},
}

// RouteSchema is the shape of recommend_route replies.
var RouteSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"routes": {
			Type: "ARRAY",
			Items: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"name":        {Type: "STRING"},
					"description": {Type: "STRING"},
					"distance_km": {Type: "NUMBER"},
				},
				Required: []string{"name", "description", "distance_km"},
			},
		},
	},
	Required: []string{"routes"},
}

// schemaFor returns the reply schema of a family, or nil when the family answers in plain text.
func schemaFor(family assistant.Family) *Schema {
	switch family {
	case assistant.FamilyStructured:
		return RecommendationSchema
	case assistant.FamilyRoute:
		return RouteSchema
	default:
		return nil
	}
}
