package prompt

import (
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Schema descriptors for the structured outputs the AI boundary must return.
// These are structural contracts; the boundary is assumed to enforce them,
// the invoker only attempts to parse the returned text against the matching
// Go types.

func recipeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title":        {Type: "string", Description: "The creative and appealing name of the recipe."},
			"description":  {Type: "string", Description: "A short, enticing description of the dish."},
			"ingredients":  {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "A list of all ingredients with quantities."},
			"instructions": {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Step-by-step cooking instructions."},
			"prepTime":     {Type: "string", Description: `Estimated preparation time (e.g., "15 minutes").`},
			"cookTime":     {Type: "string", Description: `Estimated cooking time (e.g., "30 minutes").`},
			"servings":     {Type: "string", Description: `Number of servings the recipe makes (e.g., "4 servings").`},
			"imagePrompt":  {Type: "string", Description: "A detailed, descriptive prompt for an AI image generator to create a visually appealing photo of the final dish."},
		},
		Required: []string{"title", "description", "ingredients", "instructions", "prepTime", "cookTime", "servings", "imagePrompt"},
	}
}

// recipeListSchema wraps recipes in an object so streamed responses always
// parse as a single top-level JSON object.
func recipeListSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {Type: "array", Items: recipeSchema()},
		},
		Required: []string{"recipes"},
	}
}

func nutritionSchema() *jsonschema.Schema {
	nutrient := func() *jsonschema.Schema {
		return &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":   {Type: "string"},
				"amount": {Type: "string"},
			},
			Required: []string{"name", "amount"},
		}
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"mealName": {Type: "string", Description: "A descriptive name for the meal analyzed."},
			"calories": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"total":      {Type: "number"},
					"perServing": {Type: "number"},
				},
				Required: []string{"total", "perServing"},
			},
			"macros": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"protein":       {Type: "string", Description: `e.g., "25g"`},
					"carbohydrates": {Type: "string", Description: `e.g., "40g"`},
					"fat":           {Type: "string", Description: `e.g., "15g"`},
				},
				Required: []string{"protein", "carbohydrates", "fat"},
			},
			"vitamins": {Type: "array", Items: nutrient(), Description: "List of 5 key vitamins."},
			"minerals": {Type: "array", Items: nutrient(), Description: "List of 5 key minerals."},
		},
		Required: []string{"mealName", "calories", "macros", "vitamins", "minerals"},
	}
}

func dietaryPlanSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"condition":    {Type: "string"},
			"foodsToFavor": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"foodsToAvoid": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"guidelines":   {Type: "string"},
			"recipes":      {Type: "array", Items: recipeSchema()},
		},
		Required: []string{"condition", "foodsToFavor", "foodsToAvoid", "guidelines", "recipes"},
	}
}

func personalizedPlanSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title":   {Type: "string", Description: "The overall title of the dietary plan, reflecting the user's goals."},
			"summary": {Type: "string", Description: "A brief summary of the plan's focus and benefits."},
			"days": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"day": {Type: "string", Description: `The day of the plan (e.g., "Monday", "Day 1").`},
						"meals": {
							Type: "array",
							Items: &jsonschema.Schema{
								Type: "object",
								Properties: map[string]*jsonschema.Schema{
									"name": {Type: "string", Description: `The name of the meal (e.g., "Breakfast", "Lunch").`},
									"recipe": {
										Type: "object",
										Properties: map[string]*jsonschema.Schema{
											"title":       {Type: "string", Description: "The creative and appealing name of the recipe."},
											"description": {Type: "string", Description: "A short, enticing description of the dish to show in the plan overview."},
										},
										Required: []string{"title", "description"},
									},
								},
								Required: []string{"name", "recipe"},
							},
						},
						"dailyTotals": {
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"calories": {Type: "number"},
								"protein":  {Type: "string", Description: `e.g., "120g"`},
								"carbs":    {Type: "string", Description: `e.g., "150g"`},
								"fat":      {Type: "string", Description: `e.g., "60g"`},
							},
							Required: []string{"calories", "protein", "carbs", "fat"},
						},
					},
					Required: []string{"day", "meals", "dailyTotals"},
				},
			},
		},
		Required: []string{"title", "summary", "days"},
	}
}

func ingredientIDSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ingredients": {Type: "string", Description: "A comma-separated list of ingredients identified in the image."},
		},
		Required: []string{"ingredients"},
	}
}
