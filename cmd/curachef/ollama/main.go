// One-shot runner against a local Ollama server, for development without an
// AWS account.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joeshaw/envdecode"

	"curachef"
	"curachef/gen"
	"curachef/gen/ollama"
	"curachef/session"
	"curachef/users"
)

func main() {
	ctx := context.Background()

	var modelConfig curachef.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var appConfig curachef.AppConfig
	if err := envdecode.Decode(&appConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	store := users.NewStore(users.NewFileBackend(appConfig.UsersPath))
	auth := users.NewService(store)

	email := envOr("CURACHEF_EMAIL", "demo@curachef.dev")
	password := envOr("CURACHEF_PASSWORD", "demo")
	if _, err := auth.SignIn(ctx, email, password); err != nil {
		if !curachef.IsAuth(err) {
			slog.Error("SETUP: Failed to sign in", "error", err)
			return
		}
		if _, err := auth.SignUp(ctx, email, password); err != nil {
			slog.Error("SETUP: Failed to sign up", "error", err)
			return
		}
	}

	feature, err := curachef.ParseFeature(argOr(1, string(curachef.FeatureRecipeGenerator)))
	if err != nil {
		slog.Error("SETUP: Bad feature argument", "error", err)
		return
	}
	input := argOr(2, "chicken breast, rice, broccoli, soy sauce")

	logger, cleanup, err := newGenerationLogger(modelConfig.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create generation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush generation log", "error", err)
		}
	}()

	llm, err := ollama.NewClient(ollama.ClientOpts{
		BaseEndpoint: appConfig.BaseOllamaEndpoint,
		ModelID:      modelConfig.ModelID,
		HTTPClient:   &http.Client{Timeout: 5 * time.Minute},
	})
	if err != nil {
		slog.Error("SETUP: Failed to create Ollama client", "error", err)
		return
	}
	generator := gen.NewGenerator(llm, curachef.TracerNameOllama)

	coord := session.NewCoordinator(generator, auth, logger)
	if err := runFeature(ctx, coord, feature, input); err != nil {
		slog.Error("RESULT: Generation failed", "feature", feature, "error", err)
		return
	}

	out, err := json.MarshalIndent(coord.State().Results[feature], "", "  ")
	if err != nil {
		slog.Error("RESULT: Failed to marshal result", "error", err)
		return
	}
	fmt.Println(string(out))
}

func runFeature(ctx context.Context, coord *session.Coordinator, feature curachef.Feature, input string) error {
	if err := coord.SelectFeature(feature); err != nil {
		return err
	}

	if feature == curachef.FeaturePersonalizedDietaryPlanner {
		duration := curachef.PlanDuration(envOr("PLAN_DURATION", string(curachef.DurationWeekly)))
		return coord.GeneratePlan(ctx, duration)
	}

	coord.SetInput(input)
	if feature == curachef.FeatureMedicalDietaryPlanner {
		cond := curachef.MedicalCondition(envOr("MEDICAL_CONDITION", string(curachef.ConditionType2Diabetes)))
		if !cond.Valid() {
			return fmt.Errorf("unknown medical condition %q", cond)
		}
		coord.SetCondition(cond)
	}
	return coord.Submit(ctx)
}

func newGenerationLogger(modelID string) (curachef.GenerationLogger, func() error, error) {
	logFilePath := curachef.NewGenerationLogFilePath(modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := curachef.NewFileGenerationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
