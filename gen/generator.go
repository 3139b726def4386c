// Package gen implements the generation invoker: it executes exactly one
// logical request per call against an LLM backend and converts the raw
// response into the typed result the session layer expects.
package gen

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"curachef"
	"curachef/prompt"
)

// LLM is the transport seam a backend must provide. Generate is single-shot;
// GenerateStream buffers all fragments and returns the concatenated text
// after the stream's end marker.
type LLM interface {
	Generate(ctx context.Context, req prompt.Request, image []byte) (string, error)
	GenerateStream(ctx context.Context, req prompt.Request) (string, error)
}

// Generator implements curachef.Generator over an LLM backend. No retries,
// no caching: identical requests are always re-executed.
type Generator struct {
	llm    LLM
	tracer string
}

func NewGenerator(llm LLM, tracerName string) *Generator {
	if tracerName == "" {
		tracerName = curachef.TracerNameBedrock
	}
	return &Generator{llm: llm, tracer: tracerName}
}

// Generate executes one single-shot request. An attached image is forwarded
// only for image-capable features, prepended so the backend treats it as
// primary context alongside the text.
func (g *Generator) Generate(ctx context.Context, req curachef.GenerationRequest) (*curachef.FeatureResult, error) {
	ctx, span := otel.Tracer(g.tracer).Start(ctx, "Generator.Generate")
	defer span.End()

	p, err := prompt.Resolve(req.Feature, req.Input, req.Condition, req.Preferences, req.Duration)
	if err != nil {
		return nil, err
	}

	var image []byte
	if req.Feature.AcceptsImage() {
		image = req.Image
	}

	slog.Info("GENERATOR: Single-shot request", "feature", req.Feature, "prompt_len", len(p.Text), "has_image", image != nil)

	raw, err := g.llm.Generate(ctx, p, image)
	if err != nil {
		slog.Error("GENERATOR: Single-shot invoke failed", "feature", req.Feature, "error", err)
		return nil, curachef.NewGenerationError("Failed to parse response from AI.", err)
	}

	result, err := DecodeResult(req.Feature, raw)
	if err != nil {
		slog.Error("GENERATOR: Response decode failed", "feature", req.Feature, "error", err, "output_len", len(raw))
		return nil, curachef.NewGenerationError("Failed to parse response from AI.", err)
	}

	slog.Info("GENERATOR: Single-shot request complete", "feature", req.Feature, "output_len", len(raw))
	return result, nil
}

// GenerateRecipes executes one streaming request for a recipe-bearing
// feature. The stream is transport only: fragments are concatenated and the
// buffer is parsed once, after completion. onComplete receives the extracted
// recipe list; merging it into an existing slot is the caller's job.
func (g *Generator) GenerateRecipes(ctx context.Context, req curachef.GenerationRequest, onComplete func([]curachef.Recipe)) error {
	ctx, span := otel.Tracer(g.tracer).Start(ctx, "Generator.GenerateRecipes")
	defer span.End()

	p, err := prompt.Resolve(req.Feature, req.Input, req.Condition, req.Preferences, req.Duration)
	if err != nil {
		return err
	}

	slog.Info("GENERATOR: Streaming request", "feature", req.Feature, "prompt_len", len(p.Text))

	raw, err := g.llm.GenerateStream(ctx, p)
	if err != nil {
		slog.Error("GENERATOR: Stream failed", "feature", req.Feature, "error", err)
		return curachef.NewGenerationError("Failed to stream recipes from AI.", err)
	}

	recipes, err := DecodeRecipes(raw)
	if err != nil {
		slog.Error("GENERATOR: Stream buffer decode failed", "feature", req.Feature, "error", err, "output_len", len(raw))
		return curachef.NewGenerationError("Failed to stream recipes from AI.", err)
	}

	slog.Info("GENERATOR: Streaming request complete", "feature", req.Feature, "recipes", len(recipes))
	onComplete(recipes)
	return nil
}

// IdentifyIngredients asks the backend to name every food ingredient in the
// image as a single comma-separated string.
func (g *Generator) IdentifyIngredients(ctx context.Context, image []byte) (string, error) {
	ctx, span := otel.Tracer(g.tracer).Start(ctx, "Generator.IdentifyIngredients")
	defer span.End()

	raw, err := g.llm.Generate(ctx, prompt.ForIngredientID(), image)
	if err != nil {
		slog.Error("GENERATOR: Ingredient identification failed", "error", err)
		return "", curachef.NewGenerationError("Failed to identify ingredients from the image.", err)
	}

	ingredients, err := DecodeIngredients(raw)
	if err != nil {
		slog.Error("GENERATOR: Ingredient decode failed", "error", err)
		return "", curachef.NewGenerationError("Failed to identify ingredients from the image.", err)
	}
	return ingredients, nil
}

// RecipeForMeal expands a personalized-plan meal stub into one full recipe.
func (g *Generator) RecipeForMeal(ctx context.Context, title, description string, prefs curachef.UserPreferences) (*curachef.Recipe, error) {
	ctx, span := otel.Tracer(g.tracer).Start(ctx, "Generator.RecipeForMeal")
	defer span.End()

	raw, err := g.llm.Generate(ctx, prompt.ForMealRecipe(title, description, prefs), nil)
	if err != nil {
		slog.Error("GENERATOR: Meal recipe expansion failed", "title", title, "error", err)
		return nil, curachef.NewGenerationError("Failed to generate the full recipe.", err)
	}

	recipe, err := DecodeRecipe(raw)
	if err != nil {
		slog.Error("GENERATOR: Meal recipe decode failed", "title", title, "error", err)
		return nil, curachef.NewGenerationError("Failed to generate the full recipe.", err)
	}
	return recipe, nil
}

// NutritionForRecipe fetches the lazy nutrition breakdown for a recipe.
func (g *Generator) NutritionForRecipe(ctx context.Context, recipe curachef.Recipe) (*curachef.NutritionInfo, error) {
	ctx, span := otel.Tracer(g.tracer).Start(ctx, "Generator.NutritionForRecipe")
	defer span.End()

	raw, err := g.llm.Generate(ctx, prompt.ForRecipeNutrition(recipe), nil)
	if err != nil {
		slog.Error("GENERATOR: Recipe nutrition failed", "title", recipe.Title, "error", err)
		return nil, curachef.NewGenerationError("Failed to generate nutritional information for the recipe.", err)
	}

	info, err := DecodeNutrition(raw)
	if err != nil {
		slog.Error("GENERATOR: Recipe nutrition decode failed", "title", recipe.Title, "error", err)
		return nil, curachef.NewGenerationError("Failed to generate nutritional information for the recipe.", err)
	}
	return info, nil
}
