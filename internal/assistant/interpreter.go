package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// leadingFencePattern matches an opening ``` marker with an optional language tag.
	leadingFencePattern = regexp.MustCompile("^\\s*```[A-Za-z0-9_+.-]*")
	// trailingFencePattern matches a closing ``` marker.
	trailingFencePattern = regexp.MustCompile("```\\s*$")

	errEmptyReply = errors.New("generative reply is empty")
)

// ExtractJSON recovers the candidate JSON text from a model reply.
// Fence markers at either end are removed, then the text is cut to the span
// between the first '{' and the last '}'. If no such ordered pair exists the
// unfenced text is returned as-is. Whatever sits between the braces is kept,
// even if it is not a single well-formed object.
func ExtractJSON(raw string) string {
	text := leadingFencePattern.ReplaceAllString(raw, "")
	text = trailingFencePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && start < end {
		return text[start : end+1]
	}
	return text
}

// parseObject extracts and decodes a JSON object from raw.
func parseObject(raw string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("reply is not a JSON object")
	}
	return obj, nil
}

// Interpret turns a raw model reply into the result for the intent family.
// Empty replies fail with GENERATION_EMPTY for every family; structured and route
// replies that cannot be parsed fail with GENERATION_UNPARSABLE. Field values are
// never guessed.
func Interpret(family Family, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, newError(KindGenerationEmpty, errEmptyReply)
	}

	switch family {
	case FamilyFreeText:
		return trimmed, nil

	case FamilyStructured:
		obj, err := parseObject(trimmed)
		if err != nil {
			return nil, newError(KindGenerationUnparsable, err)
		}
		if _, ok := obj["recommendation"]; !ok {
			return nil, newError(KindGenerationUnparsable, errors.New(`missing "recommendation"`))
		}
		var rec Recommendation
		if err := decodeFields(obj, &rec); err != nil {
			return nil, newError(KindGenerationUnparsable, err)
		}
		if rec.SafetyTips == nil {
			rec.SafetyTips = []string{}
		}
		return rec, nil

	case FamilyRoute:
		obj, err := parseObject(trimmed)
		if err != nil {
			return nil, newError(KindGenerationUnparsable, err)
		}
		if _, ok := obj["routes"]; !ok {
			return nil, newError(KindGenerationUnparsable, errors.New(`missing "routes"`))
		}
		var routes RouteSuggestion
		if err := decodeFields(obj, &routes); err != nil {
			return nil, newError(KindGenerationUnparsable, err)
		}
		if routes.Routes == nil {
			routes.Routes = []Route{}
		}
		return routes, nil

	default:
		return nil, newError(KindGenerationUnparsable, fmt.Errorf("unsupported family %s", family))
	}
}

// decodeFields re-decodes an already validated object into a typed result.
func decodeFields(obj map[string]json.RawMessage, out any) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
