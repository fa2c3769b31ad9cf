package weather

import "strings"

// conditionLabels maps provider condition vocabulary to the labels shown to users.
// Keys are lower-case.
var conditionLabels = map[string]string{
	"clear":        "맑음",
	"sunny":        "맑음",
	"clouds":       "흐림",
	"cloudy":       "흐림",
	"overcast":     "흐림",
	"rain":         "비",
	"drizzle":      "비",
	"shower rain":  "비",
	"thunderstorm": "뇌우",
	"snow":         "눈",
	"sleet":        "진눈깨비",
	"mist":         "안개",
	"fog":          "안개",
	"haze":         "연무",
	"smoke":        "연무",
	"dust":         "황사",
	"sand":         "황사",
	"ash":          "화산재",
	"squall":       "돌풍",
	"tornado":      "토네이도",
}

// NormalizeCondition maps a provider condition to its display label.
// Unmapped conditions pass through unchanged; an empty condition becomes UnknownCondition.
func NormalizeCondition(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UnknownCondition
	}
	if label, ok := conditionLabels[strings.ToLower(trimmed)]; ok {
		return label
	}
	return trimmed
}
