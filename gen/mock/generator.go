// Package mock provides a scripted AI boundary for tests: every operation
// returns its canned value and records the request it received.
package mock

import (
	"context"

	"curachef"
)

type Generator struct {
	GenerateResult *curachef.FeatureResult
	GenerateErr    error

	Recipes    []curachef.Recipe
	RecipesErr error

	Ingredients    string
	IngredientsErr error

	Recipe    *curachef.Recipe
	RecipeErr error

	Nutrition    *curachef.NutritionInfo
	NutritionErr error

	GenerateCalls []curachef.GenerationRequest
	StreamCalls   []curachef.GenerationRequest
	ImageCalls    [][]byte
	MealCalls     []string
}

var _ curachef.Generator = (*Generator)(nil)

func (g *Generator) Generate(ctx context.Context, req curachef.GenerationRequest) (*curachef.FeatureResult, error) {
	g.GenerateCalls = append(g.GenerateCalls, req)
	if g.GenerateErr != nil {
		return nil, g.GenerateErr
	}
	return g.GenerateResult, nil
}

func (g *Generator) GenerateRecipes(ctx context.Context, req curachef.GenerationRequest, onComplete func([]curachef.Recipe)) error {
	g.StreamCalls = append(g.StreamCalls, req)
	if g.RecipesErr != nil {
		return g.RecipesErr
	}
	onComplete(g.Recipes)
	return nil
}

func (g *Generator) IdentifyIngredients(ctx context.Context, image []byte) (string, error) {
	g.ImageCalls = append(g.ImageCalls, image)
	if g.IngredientsErr != nil {
		return "", g.IngredientsErr
	}
	return g.Ingredients, nil
}

func (g *Generator) RecipeForMeal(ctx context.Context, title, description string, prefs curachef.UserPreferences) (*curachef.Recipe, error) {
	g.MealCalls = append(g.MealCalls, title)
	if g.RecipeErr != nil {
		return nil, g.RecipeErr
	}
	return g.Recipe, nil
}

func (g *Generator) NutritionForRecipe(ctx context.Context, recipe curachef.Recipe) (*curachef.NutritionInfo, error) {
	if g.NutritionErr != nil {
		return nil, g.NutritionErr
	}
	return g.Nutrition, nil
}
