// Lambda entrypoint: runs one feature through the session coordinator with
// the user store in S3 and generation records on stdout for CloudWatch.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"curachef"
	"curachef/gen"
	"curachef/gen/bedrock"
	"curachef/session"
	"curachef/users"
)

type Params struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Feature   string `json:"feature"`
	Input     string `json:"input"`
	Condition string `json:"condition,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Results struct {
	Result curachef.FeatureResult `json:"result"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig curachef.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		s3Bucket := os.Getenv("USERS_S3_BUCKET")
		s3Key := os.Getenv("USERS_S3_KEY")
		if s3Bucket == "" || s3Key == "" {
			return Results{}, fmt.Errorf("missing S3 config: USERS_S3_BUCKET and USERS_S3_KEY must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}

		store := users.NewStore(users.NewS3Backend(s3.NewFromConfig(awsCfg), s3Bucket, s3Key))
		auth := users.NewService(store)
		if _, err := auth.SignIn(ctx, params.Email, params.Password); err != nil {
			slog.Error("SETUP: Failed to sign in", "error", err)
			return Results{}, err
		}

		feature, err := curachef.ParseFeature(params.Feature)
		if err != nil {
			return Results{}, err
		}

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to create Bedrock client", "error", err)
			return Results{}, err
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
			return Results{}, err
		}
		_, _ = tracerProvider, meterProvider
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		coord := session.NewCoordinator(generator, auth, curachef.NewStdoutGenerationLogger())
		if err := runFeature(ctx, coord, feature, params); err != nil {
			slog.Error("RESULT: Generation failed", "feature", feature, "error", err)
			return Results{}, err
		}

		return Results{Result: coord.State().Results[feature]}, nil
	}

	lambda.Start(fn)
}

func runFeature(ctx context.Context, coord *session.Coordinator, feature curachef.Feature, params Params) error {
	if err := coord.SelectFeature(feature); err != nil {
		return err
	}

	if feature == curachef.FeaturePersonalizedDietaryPlanner {
		duration := curachef.PlanDuration(params.Duration)
		if params.Duration == "" {
			duration = curachef.DurationWeekly
		}
		return coord.GeneratePlan(ctx, duration)
	}

	coord.SetInput(params.Input)
	if feature == curachef.FeatureMedicalDietaryPlanner {
		cond := curachef.MedicalCondition(params.Condition)
		if !cond.Valid() {
			return fmt.Errorf("unknown medical condition %q", params.Condition)
		}
		coord.SetCondition(cond)
	}
	return coord.Submit(ctx)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
