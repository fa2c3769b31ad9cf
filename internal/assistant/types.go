/*
Package assistant turns a user's message about their pet into a grounded
recommendation. It classifies the message, renders an intent-specific prompt
from the pet profile and the current environment, asks the generative model,
and interprets the model's reply into a structured result.
*/
package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Intent is the closed set of things a user message can ask for.
type Intent string

const (
	IntentWalkCheck      Intent = "walk_check"
	IntentRecommendRoute Intent = "recommend_route"
	IntentWeatherInfo    Intent = "weather_info"
	IntentGreeting       Intent = "greeting"
	IntentThanks         Intent = "thanks"
	IntentClothRecommend Intent = "cloth_recommend"
	IntentUnknown        Intent = "unknown"
)

// AllIntents lists every intent in classification-prompt order.
var AllIntents = []Intent{
	IntentWalkCheck,
	IntentRecommendRoute,
	IntentWeatherInfo,
	IntentGreeting,
	IntentThanks,
	IntentClothRecommend,
	IntentUnknown,
}

// ParseIntent validates a label against the closed set.
func ParseIntent(label string) (Intent, bool) {
	for _, in := range AllIntents {
		if string(in) == label {
			return in, true
		}
	}
	return IntentUnknown, false
}

// Family groups intents by the shape of the reply the model is asked for.
type Family int

const (
	// FamilyStructured replies are {recommendation, reason, safety_tips}.
	FamilyStructured Family = iota
	// FamilyRoute replies are {routes: [...]}.
	FamilyRoute
	// FamilyFreeText replies are plain natural language.
	FamilyFreeText
)

func (f Family) String() string {
	switch f {
	case FamilyStructured:
		return "structured"
	case FamilyRoute:
		return "route"
	case FamilyFreeText:
		return "free_text"
	default:
		return "invalid"
	}
}

// Family returns the reply family of the intent.
func (i Intent) Family() Family {
	return templateFor(i).family
}

// Profile is a read-only snapshot of the pet the user is asking about.
type Profile struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Age      int     `json:"age"`
	Weight   float64 `json:"weight"`
}

// ErrProfileNotFound is returned by a ProfileStore when the subject does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore looks up pet profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, subjectID string) (Profile, error)
}

// Generator is the generative text provider: one prompt in, one completion out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StructuredGenerator is a Generator that can constrain its reply to the JSON
// shape of an intent family. The reply still goes through Interpret.
type StructuredGenerator interface {
	Generator
	GenerateFor(ctx context.Context, family Family, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Recommendation is the structured-family result.
type Recommendation struct {
	Recommendation string   `json:"recommendation"`
	Reason         string   `json:"reason"`
	SafetyTips     []string `json:"safety_tips"`
}

// Route is one suggested walking route.
type Route struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DistanceKm  float64 `json:"distance_km"`
}

// RouteSuggestion is the route-family result.
type RouteSuggestion struct {
	Routes []Route `json:"routes"`
}

// Request is one orchestration input.
type Request struct {
	SubjectID string  `json:"pet_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Message   string  `json:"message"`
}

// ErrInvalidRequest marks a request rejected before any collaborator is called.
var ErrInvalidRequest = errors.New("invalid request")

// Validate checks the request shape. Errors wrap ErrInvalidRequest.
func (r Request) Validate() error {
	problems := r.targetProblems()
	if strings.TrimSpace(r.Message) == "" {
		problems = append(problems, "message is required")
	}
	return invalid(problems)
}

// ValidateTarget checks only the pet and coordinates, for sessions that
// receive their messages later.
func (r Request) ValidateTarget() error {
	return invalid(r.targetProblems())
}

func (r Request) targetProblems() []string {
	var problems []string
	if strings.TrimSpace(r.SubjectID) == "" {
		problems = append(problems, "pet_id is required")
	}
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		problems = append(problems, "latitude must be between -90 and 90")
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		problems = append(problems, "longitude must be between -180 and 180")
	}
	return problems
}

func invalid(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, ", "))
}

// StatusSuccess tags every successful response.
const StatusSuccess = "llm_success"

// Response is the tagged object returned to callers. Data is one of
// Recommendation, RouteSuggestion or string on success, and nil on failure.
type Response struct {
	Status string `json:"status"`
	Intent Intent `json:"intent,omitempty"`
	Data   any    `json:"data"`
}
