// Command walkmate asks the walk assistant one question from the terminal,
// using an inline pet profile instead of the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/config"
	"Walkmate_V0.1/internal/geminiservice"
	"Walkmate_V0.1/internal/weather"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var version = "dev"

// providers are the outbound collaborators one ask needs.
type providers struct {
	env  weather.Fetcher
	gen  assistant.Generator
	opts assistant.Options
}

type providerFactory func() (providers, error)

func liveProviders() (providers, error) {
	cfg, err := config.LoadProviders()
	if err != nil {
		return providers{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return providers{
		env: weather.NewOpenWeatherClient(cfg.OpenWeather, &http.Client{Timeout: cfg.EnvironmentTimeout}),
		gen: geminiservice.NewClient(cfg.Gemini),
		opts: assistant.Options{
			EnvironmentTimeout: cfg.EnvironmentTimeout,
			GenerationTimeout:  cfg.GenerationTimeout,
		},
	}, nil
}

// inlineProfile serves the one profile given on the command line.
type inlineProfile struct {
	profile assistant.Profile
}

func (p inlineProfile) GetProfile(ctx context.Context, subjectID string) (assistant.Profile, error) {
	return p.profile, nil
}

func main() {
	if err := newRootCmd(liveProviders).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(factory providerFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "walkmate",
		Short:        "Walkmate - weather-aware walk assistant for your dog",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newAskCmd(factory))
	return rootCmd
}

func newAskCmd(factory providerFactory) *cobra.Command {
	var (
		profile  assistant.Profile
		lat, lon float64
		timeout  time.Duration
		verbose  bool
	)

	askCmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the assistant one question about your pet",
		Long: `Ask runs one assistant request against the live weather and generative
providers. The pet profile comes from the flags.

Example:
  walkmate ask --name 보리 --breed poodle --age 3 --weight 4.5 --lat 37.5665 --lon 126.978 "지금 산책 가도 돼?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(profile.Name) == "" {
				return errors.New("--name is required")
			}
			if profile.Weight <= 0 {
				return errors.New("--weight must be positive")
			}
			if profile.Age < 0 {
				return errors.New("--age must not be negative")
			}

			req := assistant.Request{
				SubjectID: "cli",
				Latitude:  lat,
				Longitude: lon,
				Message:   strings.Join(args, " "),
			}
			if err := req.Validate(); err != nil {
				return err
			}

			p, err := factory()
			if err != nil {
				return err
			}

			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()

			ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), timeout)
			defer cancel()

			orchestrator := assistant.NewOrchestrator(inlineProfile{profile: profile}, p.env, p.gen, p.opts)
			resp := orchestrator.Handle(ctx, req)

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if resp.Status != assistant.StatusSuccess {
				return fmt.Errorf("assistant failed: %s", resp.Status)
			}
			return nil
		},
	}

	askCmd.Flags().StringVar(&profile.Name, "name", "", "pet name")
	askCmd.Flags().StringVar(&profile.Category, "breed", "", "pet breed")
	askCmd.Flags().IntVar(&profile.Age, "age", 0, "pet age in years")
	askCmd.Flags().Float64Var(&profile.Weight, "weight", 0, "pet weight in kg")
	askCmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	askCmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	askCmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "overall deadline")
	askCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	_ = askCmd.MarkFlagRequired("lat")
	_ = askCmd.MarkFlagRequired("lon")

	return askCmd
}
