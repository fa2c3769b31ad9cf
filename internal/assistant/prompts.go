package assistant

import (
	"fmt"
	"strings"

	"Walkmate_V0.1/internal/weather"
)

/* =================================================================================
								PROMPT TEMPLATES
	One template per intent. Each template's verbs are filled, in order, by the
	args function of its descriptor.
=================================================================================*/

const walkCheckTemplate = `You are a careful veterinary walking coach helping a pet owner.
Decide whether it is a good time to take the pet for a walk right now.

=== PET PROFILE ===
Name: %s
Breed: %s
Age: %d years
Weight: %s kg

=== CURRENT ENVIRONMENT ===
Condition: %s
Temperature: %s°C
PM10: %s µg/m³
PM2.5: %s µg/m³

=== OWNER MESSAGE ===
%s

RESPONSE FORMAT:
- Answer in Korean.
- Return ONLY a JSON object with exactly these fields:
  {"recommendation": string, "reason": string, "safety_tips": [string]}
- "reason" must refer to the temperature and fine dust values above.
- If a reading is "unavailable", say so instead of guessing a value.
- Do NOT add markdown, explanations, or preamble.`

const weatherInfoTemplate = `You are a friendly weather assistant for pet owners.
Explain the current weather and air quality and what it means for this pet.

=== PET PROFILE ===
Name: %s
Breed: %s

=== CURRENT ENVIRONMENT ===
Condition: %s
Temperature: %s°C
PM10: %s µg/m³
PM2.5: %s µg/m³

RESPONSE FORMAT:
- Answer in Korean.
- Return ONLY a JSON object with exactly these fields:
  {"recommendation": string, "reason": string, "safety_tips": [string]}
- "reason" must be based only on the temperature, PM10 and PM2.5 values above.
- If a reading is "unavailable", say so instead of guessing a value.
- Do NOT add markdown, explanations, or preamble.`

const clothRecommendTemplate = `You are a pet apparel advisor.
Recommend what the pet should wear outside right now.

=== PET PROFILE ===
Name: %s
Breed: %s
Age: %d years
Weight: %s kg

=== CURRENT ENVIRONMENT ===
Condition: %s
Temperature: %s°C
PM10: %s µg/m³
PM2.5: %s µg/m³

=== OWNER MESSAGE ===
%s

RESPONSE FORMAT:
- Answer in Korean.
- Return ONLY a JSON object with exactly these fields:
  {"recommendation": string, "reason": string, "safety_tips": [string]}
- Consider the breed's coat and body size.
- Do NOT add markdown, explanations, or preamble.`

const recommendRouteTemplate = `You are a local walking route guide.
Suggest 2 to 3 dog-friendly walking routes near latitude %s, longitude %s.

RESPONSE FORMAT:
- Answer in Korean.
- Return ONLY a JSON object with exactly this shape:
  {"routes": [{"name": string, "description": string, "distance_km": number}]}
- Do NOT add markdown, explanations, or preamble.`

const greetingTemplate = `You are Walkmate, a cheerful assistant for %s, a %s, and their owner.
The owner said: "%s"
Reply with a short, warm greeting in Korean that responds naturally to "%s".
Reply in plain text only, no JSON, at most two sentences.`

const thanksTemplate = `You are Walkmate, a cheerful assistant for %s and their owner.
The owner thanked you: "%s"
Reply with one short, friendly sentence in Korean. Plain text only, no JSON.`

const unknownTemplate = `Reply in one short Korean sentence that you cannot answer this request, and that you can help with walks, weather, routes and outfits for pets. Plain text only.`

// CannotAnswerReply is returned for unknown intents when the model gives nothing usable.
const CannotAnswerReply = "죄송해요, 그 질문에는 답변드리기 어려워요. 산책, 날씨, 산책 경로, 옷차림에 대해 물어봐 주세요."

// PromptInput carries every value a template may need.
type PromptInput struct {
	Profile     Profile
	Environment weather.Snapshot
	Message     string
	Latitude    float64
	Longitude   float64
}

// templateSpec describes how to render one intent.
type templateSpec struct {
	family Family
	text   string
	args   func(in PromptInput) []any
}

// templates is the closed dispatch table from intent to template descriptor.
var templates = map[Intent]templateSpec{
	IntentWalkCheck: {
		family: FamilyStructured,
		text:   walkCheckTemplate,
		args: func(in PromptInput) []any {
			return append(profileArgs(in.Profile), append(environmentArgs(in.Environment), in.Message)...)
		},
	},
	IntentWeatherInfo: {
		family: FamilyStructured,
		text:   weatherInfoTemplate,
		args: func(in PromptInput) []any {
			return append([]any{in.Profile.Name, BreedLabel(in.Profile.Category)}, environmentArgs(in.Environment)...)
		},
	},
	IntentClothRecommend: {
		family: FamilyStructured,
		text:   clothRecommendTemplate,
		args: func(in PromptInput) []any {
			return append(profileArgs(in.Profile), append(environmentArgs(in.Environment), in.Message)...)
		},
	},
	IntentRecommendRoute: {
		family: FamilyRoute,
		text:   recommendRouteTemplate,
		args: func(in PromptInput) []any {
			return []any{formatCoordinate(in.Latitude), formatCoordinate(in.Longitude)}
		},
	},
	IntentGreeting: {
		family: FamilyFreeText,
		text:   greetingTemplate,
		args: func(in PromptInput) []any {
			return []any{in.Profile.Name, BreedLabel(in.Profile.Category), in.Message, in.Message}
		},
	},
	IntentThanks: {
		family: FamilyFreeText,
		text:   thanksTemplate,
		args: func(in PromptInput) []any {
			return []any{in.Profile.Name, in.Message}
		},
	},
	IntentUnknown: {
		family: FamilyFreeText,
		text:   unknownTemplate,
		args:   func(PromptInput) []any { return nil },
	},
}

// templateFor returns the descriptor for an intent; anything outside the table is unknown.
func templateFor(intent Intent) templateSpec {
	if spec, ok := templates[intent]; ok {
		return spec
	}
	return templates[IntentUnknown]
}

// Synthesize renders the prompt for an intent.
func Synthesize(intent Intent, in PromptInput) string {
	spec := templateFor(intent)
	args := spec.args(in)
	if len(args) == 0 {
		return spec.text
	}
	return fmt.Sprintf(spec.text, args...)
}

func profileArgs(p Profile) []any {
	return []any{p.Name, BreedLabel(p.Category), p.Age, formatDecimal(p.Weight)}
}

func environmentArgs(s weather.Snapshot) []any {
	return []any{
		weather.NormalizeCondition(s.ConditionLabel),
		formatDecimal(s.TemperatureC),
		weather.FormatPollutant(s.PM10),
		weather.FormatPollutant(s.PM25),
	}
}

func formatDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatCoordinate(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}
