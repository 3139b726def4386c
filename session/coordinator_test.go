package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curachef"
	"curachef/gen/mock"
	"curachef/users"
)

func newTestCoordinator(t *testing.T, g *mock.Generator, signedIn bool) (*Coordinator, *users.Service) {
	t.Helper()
	auth := users.NewService(users.NewStore(users.NewTestBackend(nil)))
	if signedIn {
		_, err := auth.SignUp(context.Background(), "a@b.com", "secret")
		require.NoError(t, err)
	}
	return NewCoordinator(g, auth, nil), auth
}

func TestSubmitRequiresSignIn(t *testing.T) {
	g := &mock.Generator{}
	coord, _ := newTestCoordinator(t, g, false)
	coord.SetInput("rice")

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.GenerateCalls, "validation failures never reach the boundary")
	assert.Empty(t, g.StreamCalls)
	assert.Equal(t, err.Error(), coord.State().Error)
}

func TestSubmitRequiresInput(t *testing.T) {
	g := &mock.Generator{}
	coord, _ := newTestCoordinator(t, g, true)
	coord.SetInput("   \t  ")

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.StreamCalls)
}

func TestSubmitMedicalRequiresCondition(t *testing.T) {
	g := &mock.Generator{}
	coord, _ := newTestCoordinator(t, g, true)
	require.NoError(t, coord.SelectFeature(curachef.FeatureMedicalDietaryPlanner))
	coord.SetInput("oats, spinach")

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.GenerateCalls)
}

func TestSubmitRejectsConcurrentGeneration(t *testing.T) {
	g := &mock.Generator{Recipes: []curachef.Recipe{{Title: "x"}}}
	coord, _ := newTestCoordinator(t, g, true)
	coord.SetInput("rice")
	coord.state.Busy[curachef.FeatureRecipeGenerator] = true

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Contains(t, err.Error(), "already in progress")
	assert.Empty(t, g.StreamCalls)

	// The rejection must not release the busy flag: a repeat submit is still
	// blocked and the boundary stays untouched.
	assert.True(t, coord.State().Busy[curachef.FeatureRecipeGenerator])
	err = coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.StreamCalls)
	assert.Empty(t, g.GenerateCalls)
}

func TestGeneratePlanRejectsConcurrentGeneration(t *testing.T) {
	g := &mock.Generator{GenerateResult: &curachef.FeatureResult{}}
	coord, _ := newTestCoordinator(t, g, true)
	coord.state.Busy[curachef.FeaturePersonalizedDietaryPlanner] = true

	err := coord.GeneratePlan(context.Background(), curachef.DurationDaily)
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.True(t, coord.State().Busy[curachef.FeaturePersonalizedDietaryPlanner], "rejection must not release the slot")
	assert.Empty(t, g.GenerateCalls)
}

func TestSubmitPersonalizedPlannerRequiresDuration(t *testing.T) {
	g := &mock.Generator{GenerateResult: &curachef.FeatureResult{}}
	coord, _ := newTestCoordinator(t, g, true)
	require.NoError(t, coord.SelectFeature(curachef.FeaturePersonalizedDietaryPlanner))
	coord.SetInput("some stray text")

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Contains(t, err.Error(), "plan duration")
	assert.Empty(t, g.GenerateCalls, "a duration-less plan request never reaches the boundary")
	assert.Empty(t, g.StreamCalls)
}

func TestSubmitStreamedRecipes(t *testing.T) {
	recipes := []curachef.Recipe{{Title: "Lemon Rice"}, {Title: "Curd Rice"}}
	g := &mock.Generator{Recipes: recipes}
	coord, auth := newTestCoordinator(t, g, true)

	prefs := curachef.UserPreferences{
		DietaryRestrictions: []string{"Vegetarian"},
		Allergies:           []string{},
		FavoriteCuisines:    []string{},
		HealthGoals:         []string{},
	}
	_, err := auth.SavePreferences(context.Background(), prefs)
	require.NoError(t, err)

	coord.SetInput("rice, lemon, curd")
	require.NoError(t, coord.Submit(context.Background()))

	require.Len(t, g.StreamCalls, 1)
	assert.Equal(t, curachef.FeatureRecipeGenerator, g.StreamCalls[0].Feature)
	assert.Equal(t, "rice, lemon, curd", g.StreamCalls[0].Input)
	assert.Equal(t, prefs, g.StreamCalls[0].Preferences, "stored preferences ride every request")
	assert.Empty(t, g.GenerateCalls)

	state := coord.State()
	assert.Equal(t, recipes, state.Results[curachef.FeatureRecipeGenerator].Recipes)
	assert.False(t, state.Generating())
	assert.Empty(t, state.Error)
}

func TestSubmitSingleShotNutrition(t *testing.T) {
	info := &curachef.NutritionInfo{MealName: "Thali"}
	g := &mock.Generator{GenerateResult: &curachef.FeatureResult{Nutrition: info}}
	coord, _ := newTestCoordinator(t, g, true)

	require.NoError(t, coord.SelectFeature(curachef.FeatureNutritionalAnalyzer))
	coord.SetInput("a vegetarian thali")
	require.NoError(t, coord.Submit(context.Background()))

	require.Len(t, g.GenerateCalls, 1)
	assert.Empty(t, g.StreamCalls)
	assert.Equal(t, info, coord.State().Results[curachef.FeatureNutritionalAnalyzer].Nutrition)
}

func TestSubmitMedicalPlanTwoSteps(t *testing.T) {
	plan := &curachef.DietaryPlan{
		Condition:  "Type 2 Diabetes",
		Guidelines: "Favor low glycemic index foods.",
	}
	recipes := []curachef.Recipe{{Title: "Ragi Dosa"}}
	g := &mock.Generator{
		GenerateResult: &curachef.FeatureResult{DietaryPlan: plan},
		Recipes:        recipes,
	}
	coord, _ := newTestCoordinator(t, g, true)

	require.NoError(t, coord.SelectFeature(curachef.FeatureMedicalDietaryPlanner))
	coord.SetInput("ragi, vegetables")
	coord.SetCondition(curachef.ConditionType2Diabetes)
	require.NoError(t, coord.Submit(context.Background()))

	// Guidelines land via the single-shot call before the recipe stream runs.
	require.Len(t, g.GenerateCalls, 1)
	require.Len(t, g.StreamCalls, 1)
	assert.Equal(t, curachef.ConditionType2Diabetes, g.GenerateCalls[0].Condition)

	slot := coord.State().Results[curachef.FeatureMedicalDietaryPlanner]
	require.NotNil(t, slot.DietaryPlan)
	assert.Equal(t, "Favor low glycemic index foods.", slot.DietaryPlan.Guidelines)
	assert.Equal(t, recipes, slot.Recipes)
}

func TestSubmitMedicalPlanGuidelineFailureSkipsStream(t *testing.T) {
	g := &mock.Generator{
		GenerateErr: curachef.NewGenerationError("Failed to parse response from AI.", nil),
	}
	coord, _ := newTestCoordinator(t, g, true)

	require.NoError(t, coord.SelectFeature(curachef.FeatureMedicalDietaryPlanner))
	coord.SetInput("oats")
	coord.SetCondition(curachef.ConditionHypertension)

	err := coord.Submit(context.Background())
	require.Error(t, err)
	assert.Empty(t, g.StreamCalls, "the dependent stream call must not run")

	state := coord.State()
	assert.Equal(t, "Failed to parse response from AI.", state.Error)
	assert.False(t, state.Busy[curachef.FeatureMedicalDietaryPlanner])
}

func TestSubmitStreamFailureSurfacesMessage(t *testing.T) {
	g := &mock.Generator{
		RecipesErr: curachef.NewGenerationError("Failed to stream recipes from AI.", nil),
	}
	coord, _ := newTestCoordinator(t, g, true)
	coord.SetInput("rice")

	err := coord.Submit(context.Background())
	require.Error(t, err)

	state := coord.State()
	assert.Equal(t, "Failed to stream recipes from AI.", state.Error)
	assert.False(t, state.Generating())
	assert.True(t, state.Results[curachef.FeatureRecipeGenerator].Empty(), "slot stays reset after a failed attempt")
}

func TestGeneratePlan(t *testing.T) {
	plan := &curachef.PersonalizedPlan{Title: "High-Protein Week", Days: []curachef.PlanDay{{Day: "Monday"}}}
	g := &mock.Generator{GenerateResult: &curachef.FeatureResult{PersonalizedPlan: plan}}
	coord, _ := newTestCoordinator(t, g, true)

	require.NoError(t, coord.GeneratePlan(context.Background(), curachef.DurationWeekly))

	require.Len(t, g.GenerateCalls, 1)
	assert.Equal(t, curachef.DurationWeekly, g.GenerateCalls[0].Duration)
	assert.Empty(t, g.GenerateCalls[0].Input, "plan generation reads no free-text input")
	assert.Equal(t, plan, coord.State().Results[curachef.FeaturePersonalizedDietaryPlanner].PersonalizedPlan)
}

func TestGeneratePlanRejectsBadDuration(t *testing.T) {
	g := &mock.Generator{}
	coord, _ := newTestCoordinator(t, g, true)

	err := coord.GeneratePlan(context.Background(), curachef.PlanDuration("Fortnightly"))
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.GenerateCalls)
}

func TestAttachImage(t *testing.T) {
	g := &mock.Generator{Ingredients: "tomato, onion, coriander"}
	coord, _ := newTestCoordinator(t, g, true)
	coord.SetInput("old text")

	image := []byte{0xFF, 0xD8}
	require.NoError(t, coord.AttachImage(context.Background(), image))

	require.Len(t, g.ImageCalls, 1)
	assert.Equal(t, image, g.ImageCalls[0])

	state := coord.State()
	assert.Equal(t, "tomato, onion, coriander", state.TextInput, "identified list replaces the text input")
	assert.True(t, state.ShowIdentified)
	assert.False(t, state.Generating())
	assert.Equal(t, image, state.Image)
}

func TestAttachImageFailureStillEndsLoading(t *testing.T) {
	g := &mock.Generator{
		IngredientsErr: curachef.NewGenerationError("Failed to identify ingredients from the image.", nil),
	}
	coord, _ := newTestCoordinator(t, g, true)
	coord.SetInput("keep me")

	err := coord.AttachImage(context.Background(), []byte{0xFF})
	require.Error(t, err)

	state := coord.State()
	assert.False(t, state.Generating(), "loading must end even when identification fails")
	assert.Equal(t, "Failed to identify ingredients from the image.", state.Error)
	assert.Equal(t, "keep me", state.TextInput, "failed identification leaves the input alone")
	assert.False(t, state.ShowIdentified)
}

func TestAttachImageNilClearsOnly(t *testing.T) {
	g := &mock.Generator{}
	coord, _ := newTestCoordinator(t, g, true)

	require.NoError(t, coord.AttachImage(context.Background(), nil))
	assert.Empty(t, g.ImageCalls)
	assert.Nil(t, coord.State().Image)
}

func TestSignOutResetsSession(t *testing.T) {
	g := &mock.Generator{Recipes: []curachef.Recipe{{Title: "Lemon Rice"}}}
	coord, auth := newTestCoordinator(t, g, true)
	coord.SetInput("rice")
	require.NoError(t, coord.Submit(context.Background()))
	require.False(t, coord.State().Results[curachef.FeatureRecipeGenerator].Empty())

	coord.SignOut()

	assert.Nil(t, auth.Current())
	assert.Equal(t, NewState(), coord.State())
}

func TestExpandPlanMeal(t *testing.T) {
	recipe := &curachef.Recipe{Title: "Egg Bhurji"}
	g := &mock.Generator{Recipe: recipe}
	coord, _ := newTestCoordinator(t, g, true)

	got, err := coord.ExpandPlanMeal(context.Background(), "Egg Bhurji", "Spiced scrambled eggs.")
	require.NoError(t, err)
	assert.Equal(t, recipe, got)
	assert.Equal(t, []string{"Egg Bhurji"}, g.MealCalls)
}

func TestExpandPlanMealRequiresSignIn(t *testing.T) {
	g := &mock.Generator{Recipe: &curachef.Recipe{Title: "x"}}
	coord, _ := newTestCoordinator(t, g, false)

	_, err := coord.ExpandPlanMeal(context.Background(), "x", "y")
	require.Error(t, err)
	assert.True(t, curachef.IsValidation(err))
	assert.Empty(t, g.MealCalls)
}

type recordingLogger struct {
	records []curachef.GenerationRecord
}

func (l *recordingLogger) LogGeneration(record curachef.GenerationRecord) error {
	l.records = append(l.records, record)
	return nil
}

func TestSubmitLogsGenerationRecords(t *testing.T) {
	g := &mock.Generator{
		GenerateResult: &curachef.FeatureResult{DietaryPlan: &curachef.DietaryPlan{Guidelines: "x"}},
		Recipes:        []curachef.Recipe{{Title: "Ragi Dosa"}},
	}
	auth := users.NewService(users.NewStore(users.NewTestBackend(nil)))
	_, err := auth.SignUp(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	logger := &recordingLogger{}
	coord := NewCoordinator(g, auth, logger)
	require.NoError(t, coord.SelectFeature(curachef.FeatureMedicalDietaryPlanner))
	coord.SetInput("ragi")
	coord.SetCondition(curachef.ConditionType2Diabetes)
	require.NoError(t, coord.Submit(context.Background()))

	require.Len(t, logger.records, 2, "one record per boundary call")
	assert.Equal(t, "generate", logger.records[0].Operation)
	assert.False(t, logger.records[0].Streamed)
	assert.Equal(t, "stream-recipes", logger.records[1].Operation)
	assert.True(t, logger.records[1].Streamed)
	for _, r := range logger.records {
		assert.Equal(t, curachef.FeatureMedicalDietaryPlanner, r.Feature)
		assert.False(t, r.Timestamp.IsZero())
		assert.Empty(t, r.Error)
	}
}

func TestSubmitLogsFailureRecord(t *testing.T) {
	g := &mock.Generator{
		RecipesErr: curachef.NewGenerationError("Failed to stream recipes from AI.", nil),
	}
	auth := users.NewService(users.NewStore(users.NewTestBackend(nil)))
	_, err := auth.SignUp(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	logger := &recordingLogger{}
	coord := NewCoordinator(g, auth, logger)
	coord.SetInput("rice")
	require.Error(t, coord.Submit(context.Background()))

	require.Len(t, logger.records, 1)
	assert.Equal(t, "Failed to stream recipes from AI.", logger.records[0].Error)
}

func TestRecipeNutrition(t *testing.T) {
	info := &curachef.NutritionInfo{MealName: "Lemon Rice"}
	g := &mock.Generator{Nutrition: info}
	coord, _ := newTestCoordinator(t, g, true)

	got, err := coord.RecipeNutrition(context.Background(), curachef.Recipe{Title: "Lemon Rice"})
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
