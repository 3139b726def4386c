package curachef

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Feature identifies one selectable capability of the application. Each
// feature maps to a fixed prompt template, output schema, and result shape.
type Feature string

const (
	FeatureRecipeGenerator            Feature = "recipe-generator"
	FeatureNutritionalAnalyzer        Feature = "nutritional-analyzer"
	FeatureLeftoverRecommender        Feature = "leftover-recommender"
	FeatureMedicalDietaryPlanner      Feature = "medical-dietary-planner"
	FeaturePersonalizedDietaryPlanner Feature = "personalized-dietary-planner"
	FeatureUserPreferences            Feature = "user-preferences"
)

// ParseFeature maps a feature identifier string to a Feature.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.TrimSpace(strings.ToLower(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown feature %q", s)
	}
	return f, nil
}

func (f Feature) Valid() bool {
	switch f {
	case FeatureRecipeGenerator, FeatureNutritionalAnalyzer, FeatureLeftoverRecommender,
		FeatureMedicalDietaryPlanner, FeaturePersonalizedDietaryPlanner, FeatureUserPreferences:
		return true
	}
	return false
}

// Generates reports whether the feature produces content through the AI
// boundary. The preferences feature is settings-only and never reaches it.
func (f Feature) Generates() bool {
	return f.Valid() && f != FeatureUserPreferences
}

// Streams reports whether the feature consumes its response incrementally.
// The stream is a transport optimization only: fragments are buffered and
// parsed once, after the end marker.
func (f Feature) Streams() bool {
	switch f {
	case FeatureRecipeGenerator, FeatureLeftoverRecommender, FeatureMedicalDietaryPlanner:
		return true
	}
	return false
}

// AcceptsImage reports whether an attached image is sent with the request.
func (f Feature) AcceptsImage() bool {
	return f == FeatureNutritionalAnalyzer
}

// MedicalCondition is the condition selector for the medical dietary planner.
type MedicalCondition string

const (
	ConditionNone            MedicalCondition = "none"
	ConditionType2Diabetes   MedicalCondition = "type-2-diabetes"
	ConditionHypertension    MedicalCondition = "hypertension"
	ConditionCeliacDisease   MedicalCondition = "celiac-disease"
	ConditionHighCholesterol MedicalCondition = "high-cholesterol"
)

func (c MedicalCondition) Valid() bool {
	switch c {
	case ConditionNone, ConditionType2Diabetes, ConditionHypertension,
		ConditionCeliacDisease, ConditionHighCholesterol:
		return true
	}
	return false
}

// Label returns the wording used in prompts for the condition.
func (c MedicalCondition) Label() string {
	switch c {
	case ConditionType2Diabetes:
		return "Type 2 Diabetes"
	case ConditionHypertension:
		return "Hypertension"
	case ConditionCeliacDisease:
		return "Celiac Disease (Gluten-Free)"
	case ConditionHighCholesterol:
		return "High Cholesterol"
	default:
		return "General Health"
	}
}

// PlanDuration is the granularity of a personalized dietary plan.
type PlanDuration string

const (
	DurationDaily   PlanDuration = "Daily"
	DurationWeekly  PlanDuration = "Weekly"
	DurationMonthly PlanDuration = "Monthly"
)

func (d PlanDuration) Valid() bool {
	switch d {
	case DurationDaily, DurationWeekly, DurationMonthly:
		return true
	}
	return false
}

// UserPreferences is the preference record owned by a User. It is mutated
// only through an explicit save, never as a side effect of generation.
type UserPreferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteCuisines    []string `json:"favoriteCuisines"`
	DailyCalorieGoal    int      `json:"dailyCalorieGoal,omitempty"`
	HealthGoals         []string `json:"healthGoals"`
	OtherHealthGoals    string   `json:"otherHealthGoals"`
	Budget              string   `json:"budget"`
}

// User is a stored account. Passwords are compared by equality against the
// seed store format; hashing is the store's concern to grow into, not this
// core's.
type User struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Preferences UserPreferences `json:"preferences"`
}

// Recipe is produced only by the AI boundary and immutable once received.
type Recipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	Servings     string   `json:"servings"`
	ImagePrompt  string   `json:"imagePrompt"`
}

// Valid checks that the recipe arrived fully formed. A recipe is never
// partially constructed.
func (r Recipe) Valid() bool {
	if r.Title == "" || r.Description == "" {
		return false
	}
	if len(r.Ingredients) == 0 || len(r.Instructions) == 0 {
		return false
	}
	if r.PrepTime == "" || r.CookTime == "" || r.Servings == "" {
		return false
	}
	return true
}

// Calories holds total and per-serving calorie counts.
type Calories struct {
	Total      float64 `json:"total"`
	PerServing float64 `json:"perServing"`
}

// Macros holds macronutrients as display strings (e.g. "25g").
type Macros struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

// Nutrient is one named amount in a vitamin or mineral list.
type Nutrient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// NutritionInfo is a nutritional breakdown for a meal or a recipe.
type NutritionInfo struct {
	MealName string     `json:"mealName"`
	Calories Calories   `json:"calories"`
	Macros   Macros     `json:"macros"`
	Vitamins []Nutrient `json:"vitamins"`
	Minerals []Nutrient `json:"minerals"`
}

// DietaryPlan is the medical planner result. Recipes arrive separately from
// the rest of the plan (streamed after the guidelines call completes).
type DietaryPlan struct {
	Condition    string   `json:"condition"`
	FoodsToFavor []string `json:"foodsToFavor"`
	FoodsToAvoid []string `json:"foodsToAvoid"`
	Guidelines   string   `json:"guidelines"`
	Recipes      []Recipe `json:"recipes"`
}

// RecipeSummary is a meal stub inside a personalized plan. The full Recipe
// is fetched on demand and is not part of the plan's persisted shape.
type RecipeSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlanMeal is one meal entry in a plan day.
type PlanMeal struct {
	Name   string        `json:"name"`
	Recipe RecipeSummary `json:"recipe"`
}

// DailyTotals holds estimated nutrition totals for one plan day.
type DailyTotals struct {
	Calories float64 `json:"calories"`
	Protein  string  `json:"protein"`
	Carbs    string  `json:"carbs"`
	Fat      string  `json:"fat"`
}

// PlanDay is one labeled day in a personalized plan.
type PlanDay struct {
	Day         string      `json:"day"`
	Meals       []PlanMeal  `json:"meals"`
	DailyTotals DailyTotals `json:"dailyTotals"`
}

// PersonalizedPlan is the personalized planner result.
type PersonalizedPlan struct {
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	Days    []PlanDay `json:"days"`
}

// Valid checks if the plan meets basic shape requirements.
func (p PersonalizedPlan) Valid() bool {
	if p.Title == "" || len(p.Days) == 0 {
		return false
	}
	for _, day := range p.Days {
		if day.Day == "" || len(day.Meals) == 0 {
			return false
		}
		for _, meal := range day.Meals {
			if meal.Name == "" || meal.Recipe.Title == "" {
				return false
			}
		}
	}
	return true
}

// FeatureResult is the per-feature slot holding the most recent generation
// result. At most one shape is populated for any given feature.
type FeatureResult struct {
	Recipes          []Recipe          `json:"recipes,omitempty"`
	Nutrition        *NutritionInfo    `json:"nutritionInfo,omitempty"`
	DietaryPlan      *DietaryPlan      `json:"dietaryPlan,omitempty"`
	PersonalizedPlan *PersonalizedPlan `json:"personalizedPlan,omitempty"`
}

// Empty reports whether the slot holds no result at all.
func (r FeatureResult) Empty() bool {
	return len(r.Recipes) == 0 && r.Nutrition == nil && r.DietaryPlan == nil && r.PersonalizedPlan == nil
}

// GenerationRequest carries everything the AI boundary needs for one call.
type GenerationRequest struct {
	Feature     Feature
	Input       string
	Condition   MedicalCondition
	Image       []byte
	Preferences UserPreferences
	Duration    PlanDuration
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generator is the AI boundary. Every call is independent: no caching, no
// deduplication, no automatic retry. Failures surface as GenerationError.
type Generator interface {
	// Generate executes one single-shot request and returns the typed result
	// for the request's feature.
	Generate(ctx context.Context, req GenerationRequest) (*FeatureResult, error)

	// GenerateRecipes executes one streaming request, buffers the fragments,
	// parses once after the end marker, and hands the recipe list to
	// onComplete. Merging into an existing slot is the caller's job.
	GenerateRecipes(ctx context.Context, req GenerationRequest, onComplete func([]Recipe)) error

	// IdentifyIngredients returns a comma-separated ingredient string for an
	// image.
	IdentifyIngredients(ctx context.Context, image []byte) (string, error)

	// RecipeForMeal expands a plan meal stub into one full Recipe.
	RecipeForMeal(ctx context.Context, title, description string, prefs UserPreferences) (*Recipe, error)

	// NutritionForRecipe returns a nutritional breakdown for a recipe.
	NutritionForRecipe(ctx context.Context, recipe Recipe) (*NutritionInfo, error)
}
