package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"Walkmate_V0.1/internal/metrics"
	"Walkmate_V0.1/internal/weather"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// State names a step of one orchestration.
type State string

const (
	StateFetchProfile     State = "fetch_profile"
	StateFetchEnvironment State = "fetch_environment"
	StateClassifyIntent   State = "classify_intent"
	StateSynthesizePrompt State = "synthesize_prompt"
	StateGenerate         State = "generate"
	StateInterpret        State = "interpret"
	StateDone             State = "done"
)

// Options tunes an Orchestrator. Zero timeouts leave the call bounded only by the caller's context.
type Options struct {
	ProfileTimeout     time.Duration
	EnvironmentTimeout time.Duration
	GenerationTimeout  time.Duration
	Metrics            *metrics.Recorder
}

// Orchestrator sequences profile lookup, environment fetch, classification,
// prompt synthesis, generation and interpretation for one request at a time.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	profiles   ProfileStore
	env        weather.Fetcher
	gen        Generator
	classifier *Classifier
	opts       Options
}

// NewOrchestrator wires the collaborators together.
func NewOrchestrator(profiles ProfileStore, env weather.Fetcher, gen Generator, opts Options) *Orchestrator {
	return &Orchestrator{
		profiles:   profiles,
		env:        env,
		gen:        gen,
		classifier: NewClassifier(gen, opts.GenerationTimeout),
		opts:       opts,
	}
}

// Handle runs the pipeline and always returns the tagged response object.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Response {
	resp, err := o.Run(ctx, req)
	if err != nil {
		return FailureResponse(err)
	}
	return resp
}

// Run executes the pipeline. On failure the error is an *Error carrying the kind and client status.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Response, error) {
	logger := zerolog.Ctx(ctx).With().Str("pet_id", req.SubjectID).Logger()
	ctx = logger.WithContext(ctx)

	resp, intent, err := o.run(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("status", StatusOf(err)).Msg("Assistant request failed")
		o.opts.Metrics.ObserveOutcome(string(intent), StatusOf(err))
		return Response{}, err
	}

	logger.Info().Str("intent", string(intent)).Msg("Assistant request completed")
	o.opts.Metrics.ObserveOutcome(string(intent), StatusSuccess)
	return resp, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (Response, Intent, error) {
	logger := zerolog.Ctx(ctx)

	// FETCH_PROFILE and FETCH_ENVIRONMENT have no data dependency on each other.
	profile, snapshot, err := o.gather(ctx, req)
	if err != nil {
		return Response{}, "", err
	}

	// CLASSIFY_INTENT never fails; it runs only after both fetches so that a
	// failed fetch never costs a generative call.
	start := time.Now()
	intent := o.classifier.Classify(ctx, req.Message)
	o.opts.Metrics.ObserveStage(string(StateClassifyIntent), time.Since(start))

	logger.Debug().Str("state", string(StateSynthesizePrompt)).Str("intent", string(intent)).Msg("Synthesizing prompt")
	prompt := Synthesize(intent, PromptInput{
		Profile:     profile,
		Environment: snapshot,
		Message:     req.Message,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})

	logger.Debug().Str("state", string(StateGenerate)).Msg("Requesting completion")
	start = time.Now()
	reply, genErr := o.generate(ctx, intent.Family(), prompt)
	o.opts.Metrics.ObserveStage(string(StateGenerate), time.Since(start))

	if intent == IntentUnknown {
		// The unknown intent always succeeds with a "cannot answer" reply.
		text := strings.TrimSpace(reply)
		if genErr != nil || text == "" {
			text = CannotAnswerReply
		}
		return Response{Status: StatusSuccess, Intent: intent, Data: text}, intent, nil
	}

	if genErr != nil {
		return Response{}, intent, newError(KindGenerationFailed, genErr)
	}

	logger.Debug().Str("state", string(StateInterpret)).Str("family", intent.Family().String()).Msg("Interpreting reply")
	data, err := Interpret(intent.Family(), reply)
	if err != nil {
		return Response{}, intent, err
	}

	return Response{Status: StatusSuccess, Intent: intent, Data: data}, intent, nil
}

// gather fetches the profile and the environment concurrently. Both always run to
// completion; a profile failure takes precedence over an environment failure.
func (o *Orchestrator) gather(ctx context.Context, req Request) (Profile, weather.Snapshot, error) {
	var (
		profile    Profile
		snapshot   weather.Snapshot
		profileErr error
		envErr     error
		mu         sync.Mutex
	)

	g, grpCtx := errgroup.WithContext(ctx)

	// --- Task 1: Profile ---
	g.Go(func() error {
		start := time.Now()
		callCtx, cancel := withOptionalTimeout(grpCtx, o.opts.ProfileTimeout)
		defer cancel()

		p, err := o.profiles.GetProfile(callCtx, req.SubjectID)
		o.opts.Metrics.ObserveStage(string(StateFetchProfile), time.Since(start))

		mu.Lock()
		profile, profileErr = p, err
		mu.Unlock()
		return nil
	})

	// --- Task 2: Environment ---
	g.Go(func() error {
		start := time.Now()
		callCtx, cancel := withOptionalTimeout(grpCtx, o.opts.EnvironmentTimeout)
		defer cancel()

		s, err := o.env.Fetch(callCtx, req.Latitude, req.Longitude)
		o.opts.Metrics.ObserveStage(string(StateFetchEnvironment), time.Since(start))

		mu.Lock()
		snapshot, envErr = s, err
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	if profileErr != nil {
		if errors.Is(profileErr, ErrProfileNotFound) {
			return Profile{}, weather.Snapshot{}, newError(KindProfileNotFound, profileErr)
		}
		return Profile{}, weather.Snapshot{}, newError(KindProfileStoreError, profileErr)
	}
	if envErr != nil {
		return Profile{}, weather.Snapshot{}, newError(KindEnvironmentUnavailable, envErr)
	}
	return profile, snapshot, nil
}

// generate calls the provider under the generation budget.
func (o *Orchestrator) generate(ctx context.Context, family Family, prompt string) (string, error) {
	callCtx, cancel := withOptionalTimeout(ctx, o.opts.GenerationTimeout)
	defer cancel()
	if sg, ok := o.gen.(StructuredGenerator); ok && family != FamilyFreeText {
		return sg.GenerateFor(callCtx, family, prompt)
	}
	return o.gen.Generate(callCtx, prompt)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
