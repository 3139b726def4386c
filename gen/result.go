package gen

import (
	"encoding/json"
	"fmt"
	"strings"

	"curachef"
)

// DecodeResult parses a raw boundary payload into the typed result for a
// feature. The boundary is assumed to enforce the schema; this only checks
// that the text parses as the expected top-level shape.
func DecodeResult(feature curachef.Feature, raw string) (*curachef.FeatureResult, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	switch feature {
	case curachef.FeatureRecipeGenerator, curachef.FeatureLeftoverRecommender:
		recipes, err := DecodeRecipes(raw)
		if err != nil {
			return nil, err
		}
		return &curachef.FeatureResult{Recipes: recipes}, nil

	case curachef.FeatureNutritionalAnalyzer:
		var info curachef.NutritionInfo
		if err := json.Unmarshal([]byte(text), &info); err != nil {
			return nil, fmt.Errorf("parse nutrition info: %w", err)
		}
		return &curachef.FeatureResult{Nutrition: &info}, nil

	case curachef.FeatureMedicalDietaryPlanner:
		var plan curachef.DietaryPlan
		if err := json.Unmarshal([]byte(text), &plan); err != nil {
			return nil, fmt.Errorf("parse dietary plan: %w", err)
		}
		// Recipes for the plan arrive on the separate streamed call.
		plan.Recipes = nil
		return &curachef.FeatureResult{DietaryPlan: &plan}, nil

	case curachef.FeaturePersonalizedDietaryPlanner:
		var plan curachef.PersonalizedPlan
		if err := json.Unmarshal([]byte(text), &plan); err != nil {
			return nil, fmt.Errorf("parse personalized plan: %w", err)
		}
		if !plan.Valid() {
			return nil, fmt.Errorf("personalized plan failed shape validation")
		}
		return &curachef.FeatureResult{PersonalizedPlan: &plan}, nil

	default:
		return nil, fmt.Errorf("feature %q has no result shape", string(feature))
	}
}

// DecodeRecipes extracts the top-level recipe list from a buffered streamed
// payload. Both the recipe-list shape and the dietary-plan shape carry their
// recipes under a top-level "recipes" key.
func DecodeRecipes(raw string) ([]curachef.Recipe, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload struct {
		Recipes []curachef.Recipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	return payload.Recipes, nil
}

// DecodeIngredients extracts the comma-separated ingredient string from an
// ingredient-identification payload.
func DecodeIngredients(raw string) (string, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return "", fmt.Errorf("no JSON object in response")
	}

	var payload struct {
		Ingredients string `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", fmt.Errorf("parse ingredients: %w", err)
	}
	if strings.TrimSpace(payload.Ingredients) == "" {
		return "", fmt.Errorf("empty ingredients in response")
	}
	return payload.Ingredients, nil
}

// DecodeRecipe parses one full recipe.
func DecodeRecipe(raw string) (*curachef.Recipe, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var recipe curachef.Recipe
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	if !recipe.Valid() {
		return nil, fmt.Errorf("recipe failed shape validation")
	}
	return &recipe, nil
}

// DecodeNutrition parses one nutrition breakdown.
func DecodeNutrition(raw string) (*curachef.NutritionInfo, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var info curachef.NutritionInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		return nil, fmt.Errorf("parse nutrition info: %w", err)
	}
	return &info, nil
}
