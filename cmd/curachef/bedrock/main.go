// One-shot runner against AWS Bedrock: signs in, runs one feature through the
// session coordinator, and prints the resulting slot as JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"curachef"
	"curachef/gen"
	"curachef/gen/bedrock"
	"curachef/session"
	"curachef/slack"
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
	slog.Info("SETUP: Signed in", "email", email)

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

	brc, err := newBedrockRuntimeClient(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to create Bedrock client", "error", err)
		return
	}

	llm := bedrock.NewLLMClient(brc, bedrock.LLMOptions{
		ModelID:     modelConfig.ModelID,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		TopP:        modelConfig.TopP,
	})
	generator := gen.NewGenerator(llm, curachef.TracerNameBedrock)

	tracerProvider, meterProvider, otelShutdown, err := curachef.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	_ = meterProvider // TODO: Use meterProvider as needed
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(curachef.TracerNameSession)
	ctx, span := tracer.Start(ctx, "one-shot", trace.WithAttributes(
		attribute.String("feature", string(feature)),
		attribute.String("model.id", modelConfig.ModelID),
		attribute.Int("model.max_tokens", int(modelConfig.MaxTokens)),
		attribute.Float64("model.temperature", float64(modelConfig.Temperature)),
		attribute.Float64("model.top_p", float64(modelConfig.TopP)),
	))
	defer span.End()

	coord := session.NewCoordinator(generator, auth, logger)
	if err := runFeature(ctx, coord, feature, input); err != nil {
		slog.Error("RESULT: Generation failed", "feature", feature, "error", err)
		return
	}

	result := coord.State().Results[feature]
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("RESULT: Failed to marshal result", "error", err)
		return
	}
	fmt.Println(string(out))

	postToSlack(ctx, appConfig, feature, result)
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

// postToSlack posts the result summary. Without a configured webhook it posts
// to a local test server so the full path still runs end to end.
func postToSlack(ctx context.Context, appConfig curachef.AppConfig, feature curachef.Feature, result curachef.FeatureResult) {
	webhookURL := appConfig.SlackWebhookURL
	if webhookURL == "" {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := new(bytes.Buffer)
			body.ReadFrom(r.Body) // nolint: errcheck
			slog.Info("FINAL: Received request",
				"method", r.Method,
				"path", r.URL.Path,
				"body", body.String(),
			)
			w.WriteHeader(http.StatusOK)
		}))
		defer testServer.Close()
		webhookURL = testServer.URL
	}

	slackClient := slack.NewClient(webhookURL, http.DefaultClient)
	if err := slackClient.PostResult(ctx, appConfig.SlackChannel, feature, result); err != nil {
		slog.Error("Failed to post result to Slack", "error", err)
	}
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
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
