package prompt

import (
	"fmt"
	"strings"

	"curachef"
)

// FormatPreferences turns a preferences record into the natural-language
// constraint string consumed by the prompt templates. One declarative clause
// per populated category; empty categories are skipped. Deterministic and
// pure.
func FormatPreferences(prefs curachef.UserPreferences) string {
	var parts []string

	if len(prefs.DietaryRestrictions) > 0 {
		parts = append(parts, fmt.Sprintf("Dietary Restrictions: %s.", strings.Join(prefs.DietaryRestrictions, ", ")))
	}
	if len(prefs.Allergies) > 0 {
		parts = append(parts, fmt.Sprintf("The user is allergic to the following and these ingredients MUST BE AVOIDED: %s.", strings.Join(prefs.Allergies, ", ")))
	}
	if len(prefs.FavoriteCuisines) > 0 {
		parts = append(parts, fmt.Sprintf("Favorite Cuisines: %s.", strings.Join(prefs.FavoriteCuisines, ", ")))
	}
	if prefs.DailyCalorieGoal > 0 {
		parts = append(parts, fmt.Sprintf("Approximate daily calorie goal: %d kcal.", prefs.DailyCalorieGoal))
	}

	goals := append([]string{}, prefs.HealthGoals...)
	if other := strings.TrimSpace(prefs.OtherHealthGoals); other != "" {
		goals = append(goals, other)
	}
	if len(goals) > 0 {
		parts = append(parts, fmt.Sprintf("Health Goals: %s.", strings.Join(goals, ", ")))
	}

	if prefs.Budget != "" {
		parts = append(parts, fmt.Sprintf("The recipes should be %s.", prefs.Budget))
	}

	if len(parts) == 0 {
		return "The user has no specific preferences set."
	}
	return "The user has the following preferences, which you must adhere to: " + strings.Join(parts, " ")
}
