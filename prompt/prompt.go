// Package prompt resolves a feature and its current input state into the
// prompt text and structured-output schema for one AI boundary call. The
// resolver is a pure function; it never performs I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"curachef"
)

// Request is one resolved (prompt, schema) pair ready for the invoker.
type Request struct {
	Text   string
	Schema *jsonschema.Schema
}

const (
	imageInstruction             = "If an image is provided, analyze the meal in the image. Combine this with any text description. Prioritize the image content."
	recipeImagePromptInstruction = "For each recipe, also provide a detailed, descriptive `imagePrompt` suitable for an AI image generator to create a visually appealing photo of the final dish."
)

// Resolve maps a generation feature and input state to exactly one request.
// The preferences feature fails here: it never reaches the invoker.
func Resolve(feature curachef.Feature, input string, condition curachef.MedicalCondition, prefs curachef.UserPreferences, duration curachef.PlanDuration) (Request, error) {
	preferenceString := FormatPreferences(prefs)

	switch feature {
	case curachef.FeatureRecipeGenerator:
		return Request{
			Text: fmt.Sprintf(
				"Generate 3-4 diverse and creative recipes from the following available ingredients: %s. Ensure a variety of cuisines, including a mix of Indian and South Indian recipes. The recipes should be suitable for a home cook. %s %s",
				input, preferenceString, recipeImagePromptInstruction),
			Schema: recipeListSchema(),
		}, nil

	case curachef.FeatureLeftoverRecommender:
		return Request{
			Text: fmt.Sprintf(
				"I have some leftovers. Here's what I have: %s. Suggest 2-3 creative new meals to avoid food waste. Ensure a variety of cuisines, including a mix of Indian and South Indian recipes if possible with the ingredients. %s %s",
				input, preferenceString, recipeImagePromptInstruction),
			Schema: recipeListSchema(),
		}, nil

	case curachef.FeatureNutritionalAnalyzer:
		return Request{
			Text: fmt.Sprintf(
				"Analyze the nutritional content of the meal or ingredients. %s Here's the description: %s. Provide a detailed breakdown.",
				imageInstruction, input),
			Schema: nutritionSchema(),
		}, nil

	case curachef.FeatureMedicalDietaryPlanner:
		label := condition.Label()
		return Request{
			Text: fmt.Sprintf(
				"Act as a registered dietitian. A user with %s has the following ingredients: %s.\n"+
					"1. Provide \"Foods to Favor\" and \"Foods to Avoid\" for their condition.\n"+
					"2. Give key dietary guidelines.\n"+
					"3. Generate 2-3 recipes suitable for them using their ingredients, strictly adhering to their dietary needs (%s). Include a variety of cuisines, such as a mix of Indian and South Indian dishes if possible. %s %s",
				label, input, label, preferenceString, recipeImagePromptInstruction),
			Schema: dietaryPlanSchema(),
		}, nil

	case curachef.FeaturePersonalizedDietaryPlanner:
		return Request{
			Text: fmt.Sprintf(
				"Act as an expert nutritionist. Create a comprehensive %[1]s dietary plan for a user based on their specific preferences.\n"+
					"The plan should be creative, delicious, and easy to follow for a home cook.\n\n"+
					"**User Preferences (You MUST adhere to all of these):**\n%[2]s\n\n"+
					"**Your Task:**\n"+
					"1. Generate a complete %[1]s meal plan. For each day, provide meals for Breakfast, Lunch, and Dinner. You can optionally add 1-2 healthy snacks.\n"+
					"2. For EVERY meal, provide just a creative `title` and a short, enticing `description`. DO NOT generate the full recipe (ingredients, instructions, etc.) in this initial plan. The full recipe will be requested later.\n"+
					"3. Ensure the meal titles are diverse and align with the user's favorite cuisines.\n"+
					"4. Calculate and provide the estimated total calories, protein, carbs, and fat for each day.\n"+
					"5. The plan's title and summary should reflect the user's main health goals.\n"+
					"6. Strictly avoid any ingredients the user is allergic to.\n"+
					"7. Adhere to all dietary restrictions mentioned.",
				duration, preferenceString),
			Schema: personalizedPlanSchema(),
		}, nil

	case curachef.FeatureUserPreferences:
		return Request{}, curachef.NewValidationError("this feature does not generate content directly")

	default:
		return Request{}, curachef.NewValidationError(fmt.Sprintf("invalid feature %q selected", string(feature)))
	}
}

// ForIngredientID resolves the ingredient-identification request for an
// attached image. The image travels separately as raw bytes.
func ForIngredientID() Request {
	return Request{
		Text:   "Analyze the provided image and identify all the food ingredients present. List them as a single, comma-separated string. Be concise and accurate.",
		Schema: ingredientIDSchema(),
	}
}

// ForMealRecipe resolves the expansion of a plan meal stub into a full
// recipe. The generated title and description must match the inputs.
func ForMealRecipe(title, description string, prefs curachef.UserPreferences) Request {
	return Request{
		Text: fmt.Sprintf(
			"Generate a complete recipe for a dish titled %q.\n"+
				"The dish is described as: %q.\n"+
				"The recipe should be suitable for a home cook and must follow all the user's preferences.\n\n"+
				"**User Preferences:**\n%s\n\n"+
				"Generate the full recipe details: title, description, ingredients, instructions, prep time, cook time, servings, and a visually descriptive image prompt for an AI image generator. The title and description you generate in the recipe must match the input title and description.",
			title, description, FormatPreferences(prefs)),
		Schema: recipeSchema(),
	}
}

// ForRecipeNutrition resolves the per-recipe nutrition breakdown request.
func ForRecipeNutrition(recipe curachef.Recipe) Request {
	return Request{
		Text: fmt.Sprintf(
			"Analyze the nutritional content of the following recipe: %q. The recipe serves %s. Ingredients: %s. Provide a detailed breakdown including total calories, calories per serving, macronutrients (protein, carbohydrates, fat in grams), and a list of 5 key vitamins and 5 key minerals with their amounts.",
			recipe.Title, recipe.Servings, strings.Join(recipe.Ingredients, ", ")),
		Schema: nutritionSchema(),
	}
}
