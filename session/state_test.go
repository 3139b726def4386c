package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curachef"
)

func TestNewState(t *testing.T) {
	s := NewState()

	assert.Equal(t, curachef.FeatureRecipeGenerator, s.ActiveFeature)
	assert.Equal(t, curachef.ConditionNone, s.SelectedCondition)
	assert.Empty(t, s.TextInput)
	assert.Empty(t, s.Error)
	assert.False(t, s.Generating())
	assert.Len(t, s.Results, 5)
	for f, r := range s.Results {
		assert.True(t, r.Empty(), "slot %s must start empty", f)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewState()
	s.Results[curachef.FeatureRecipeGenerator] = curachef.FeatureResult{
		Recipes: []curachef.Recipe{{Title: "Old"}},
	}

	next := Reduce(s, GenerationStart{Feature: curachef.FeatureRecipeGenerator})

	assert.True(t, next.Results[curachef.FeatureRecipeGenerator].Empty())
	assert.Len(t, s.Results[curachef.FeatureRecipeGenerator].Recipes, 1, "input state untouched")
	assert.False(t, s.Busy[curachef.FeatureRecipeGenerator])
}

func TestReduceSelectFeature(t *testing.T) {
	s := NewState()
	s.TextInput = "leftover rice"
	s.Image = []byte{0xFF}
	s.SelectedCondition = curachef.ConditionHypertension
	s.MenuOpen = true
	s.Results[curachef.FeatureRecipeGenerator] = curachef.FeatureResult{
		Recipes: []curachef.Recipe{{Title: "Kept"}},
	}

	next := Reduce(s, SelectFeature{Feature: curachef.FeatureNutritionalAnalyzer})

	assert.Equal(t, curachef.FeatureNutritionalAnalyzer, next.ActiveFeature)
	assert.Empty(t, next.TextInput)
	assert.Nil(t, next.Image)
	assert.Equal(t, curachef.ConditionNone, next.SelectedCondition)
	assert.False(t, next.MenuOpen)
	// Switching features never discards another feature's slot.
	assert.Len(t, next.Results[curachef.FeatureRecipeGenerator].Recipes, 1)
}

func TestReduceGenerationStartResetsOnlyTargetSlot(t *testing.T) {
	s := NewState()
	s.Error = "stale error"
	s.Results[curachef.FeatureRecipeGenerator] = curachef.FeatureResult{
		Recipes: []curachef.Recipe{{Title: "Old"}},
	}
	s.Results[curachef.FeatureNutritionalAnalyzer] = curachef.FeatureResult{
		Nutrition: &curachef.NutritionInfo{MealName: "Kept"},
	}

	next := Reduce(s, GenerationStart{Feature: curachef.FeatureRecipeGenerator})

	assert.True(t, next.Busy[curachef.FeatureRecipeGenerator])
	assert.Empty(t, next.Error)
	assert.True(t, next.Results[curachef.FeatureRecipeGenerator].Empty())
	require.NotNil(t, next.Results[curachef.FeatureNutritionalAnalyzer].Nutrition)
	assert.Equal(t, "Kept", next.Results[curachef.FeatureNutritionalAnalyzer].Nutrition.MealName)
}

func TestReduceGenerationCompleteReplacesSlot(t *testing.T) {
	s := NewState()
	s = Reduce(s, GenerationStart{Feature: curachef.FeatureRecipeGenerator})

	recipes := []curachef.Recipe{{Title: "New"}}
	next := Reduce(s, GenerationComplete{
		Feature: curachef.FeatureRecipeGenerator,
		Update:  RecipesUpdate(recipes),
	})

	assert.False(t, next.Busy[curachef.FeatureRecipeGenerator])
	assert.Equal(t, recipes, next.Results[curachef.FeatureRecipeGenerator].Recipes)
}

func TestReduceMedicalPlanMerge(t *testing.T) {
	s := NewState()
	feature := curachef.FeatureMedicalDietaryPlanner
	s = Reduce(s, GenerationStart{Feature: feature})

	plan := &curachef.DietaryPlan{
		Condition:    "Hypertension",
		FoodsToFavor: []string{"leafy greens"},
		FoodsToAvoid: []string{"salted snacks"},
		Guidelines:   "Limit sodium.",
	}
	s = Reduce(s, GenerationProgress{Feature: feature, Update: ResultUpdate{DietaryPlan: plan}})
	assert.True(t, s.Busy[feature], "progress keeps the feature busy")

	recipes := []curachef.Recipe{{Title: "Low-Sodium Dal"}}
	s = Reduce(s, GenerationComplete{Feature: feature, Update: RecipesUpdate(recipes)})

	slot := s.Results[feature]
	require.NotNil(t, slot.DietaryPlan, "streamed recipes must not clobber the plan")
	assert.Equal(t, "Limit sodium.", slot.DietaryPlan.Guidelines)
	assert.Equal(t, []string{"leafy greens"}, slot.DietaryPlan.FoodsToFavor)
	assert.Equal(t, recipes, slot.Recipes)
	assert.False(t, s.Busy[feature])
}

func TestReduceGenerationFailed(t *testing.T) {
	s := NewState()
	s = Reduce(s, GenerationStart{Feature: curachef.FeatureRecipeGenerator})

	next := Reduce(s, GenerationFailed{
		Feature: curachef.FeatureRecipeGenerator,
		Message: "Failed to stream recipes from AI.",
	})

	assert.False(t, next.Busy[curachef.FeatureRecipeGenerator])
	assert.Equal(t, "Failed to stream recipes from AI.", next.Error)

	cleared := Reduce(next, ClearError{})
	assert.Empty(t, cleared.Error)
}

func TestReduceSubmitRejectedKeepsBusy(t *testing.T) {
	s := NewState()
	s = Reduce(s, GenerationStart{Feature: curachef.FeatureRecipeGenerator})

	next := Reduce(s, SubmitRejected{Message: "A generation is already in progress for this feature."})

	assert.True(t, next.Busy[curachef.FeatureRecipeGenerator], "rejection must not release the slot")
	assert.Equal(t, "A generation is already in progress for this feature.", next.Error)
	assert.True(t, next.Results[curachef.FeatureRecipeGenerator].Empty(), "slot untouched by the rejection")
}

func TestReduceSetImageClearsIdentifiedNotice(t *testing.T) {
	s := NewState()
	s = Reduce(s, ShowIdentified{Show: true})

	next := Reduce(s, SetImage{Image: []byte{0x01}})
	assert.False(t, next.ShowIdentified)
	assert.Equal(t, []byte{0x01}, next.Image)
}

func TestReduceSignOutReset(t *testing.T) {
	s := NewState()
	s = Reduce(s, SelectFeature{Feature: curachef.FeatureMedicalDietaryPlanner})
	s = Reduce(s, SetInput{Text: "oats"})
	s = Reduce(s, SetCondition{Condition: curachef.ConditionCeliacDisease})
	s = Reduce(s, GenerationStart{Feature: curachef.FeatureMedicalDietaryPlanner})
	s = Reduce(s, GenerationComplete{
		Feature: curachef.FeatureMedicalDietaryPlanner,
		Update:  ResultUpdate{DietaryPlan: &curachef.DietaryPlan{Guidelines: "x"}},
	})

	next := Reduce(s, SignOutReset{})
	assert.Equal(t, NewState(), next)
}
