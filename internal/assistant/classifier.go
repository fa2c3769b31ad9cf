package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const classifierPromptTemplate = `You classify messages that pet owners send to a walking assistant.
Pick exactly ONE intent from this list:
%s

Intent meanings:
- walk_check: asking whether it is OK to go for a walk now
- recommend_route: asking where to walk or for a route nearby
- weather_info: asking about the weather, temperature or fine dust
- greeting: saying hello or starting a conversation
- thanks: thanking the assistant
- cloth_recommend: asking what the pet should wear
- unknown: anything else

Examples:
Message: "지금 산책 나가도 괜찮을까?" -> {"intent": "walk_check"}
Message: "근처에 산책하기 좋은 곳 추천해줘" -> {"intent": "recommend_route"}
Message: "오늘 미세먼지 어때?" -> {"intent": "weather_info"}
Message: "안녕!" -> {"intent": "greeting"}
Message: "고마워~" -> {"intent": "thanks"}
Message: "오늘 옷 입혀야 할까?" -> {"intent": "cloth_recommend"}
Message: "주식 뭐 살까?" -> {"intent": "unknown"}

Message: "%s"

Return ONLY a JSON object of the form {"intent": "<label>"} with no other text.`

// Classifier maps a free-text message to an Intent with one generative call.
type Classifier struct {
	gen     Generator
	timeout time.Duration
}

// NewClassifier builds a classifier. A zero timeout means the caller's context bounds the call.
func NewClassifier(gen Generator, timeout time.Duration) *Classifier {
	return &Classifier{gen: gen, timeout: timeout}
}

// ClassifierPrompt renders the few-shot classification prompt for a message.
func ClassifierPrompt(message string) string {
	labels := make([]string, 0, len(AllIntents))
	for _, in := range AllIntents {
		labels = append(labels, string(in))
	}
	return fmt.Sprintf(classifierPromptTemplate, strings.Join(labels, ", "), message)
}

// Classify never fails: any provider error or malformed reply yields IntentUnknown.
func (c *Classifier) Classify(ctx context.Context, message string) Intent {
	logger := zerolog.Ctx(ctx)

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.gen.Generate(callCtx, ClassifierPrompt(message))
	if err != nil {
		logger.Warn().Err(err).Msg("Intent classification call failed, falling back to unknown")
		return IntentUnknown
	}

	intent, ok := parseIntentReply(reply)
	if !ok {
		logger.Warn().Str("reply", truncate(reply, 200)).Msg("Unparsable intent reply, falling back to unknown")
		return IntentUnknown
	}

	logger.Debug().Str("intent", string(intent)).Msg("Message classified")
	return intent
}

// parseIntentReply reads the "intent" key from a tolerant-extracted reply.
func parseIntentReply(reply string) (Intent, bool) {
	if strings.TrimSpace(reply) == "" {
		return IntentUnknown, false
	}

	var payload struct {
		Intent *string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &payload); err != nil || payload.Intent == nil {
		return IntentUnknown, false
	}

	return ParseIntent(strings.ToLower(strings.TrimSpace(*payload.Intent)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
