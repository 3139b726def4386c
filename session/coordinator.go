package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"curachef"
	"curachef/users"
)

// Coordinator drives the session: it validates a submission against current
// state, dispatches the state transitions, and calls the generation boundary.
// It is single-threaded by contract; callers must drive it from one
// goroutine, the same way a UI event loop would.
type Coordinator struct {
	state  State
	gen    curachef.Generator
	auth   *users.Service
	logger curachef.GenerationLogger
}

func NewCoordinator(gen curachef.Generator, auth *users.Service, logger curachef.GenerationLogger) *Coordinator {
	if logger == nil {
		logger = curachef.NewNoOpGenerationLogger()
	}
	return &Coordinator{
		state:  NewState(),
		gen:    gen,
		auth:   auth,
		logger: logger,
	}
}

// State returns the current session state.
func (c *Coordinator) State() State {
	return c.state
}

func (c *Coordinator) dispatch(a Action) {
	c.state = Reduce(c.state, a)
}

// SelectFeature switches the active feature.
func (c *Coordinator) SelectFeature(f curachef.Feature) error {
	if !f.Valid() {
		return curachef.NewValidationError("unknown feature")
	}
	c.dispatch(SelectFeature{Feature: f})
	return nil
}

// SetInput replaces the free-text input.
func (c *Coordinator) SetInput(text string) {
	c.dispatch(SetInput{Text: text})
}

// SetCondition selects the medical condition for the dietary planner.
func (c *Coordinator) SetCondition(cond curachef.MedicalCondition) {
	c.dispatch(SetCondition{Condition: cond})
}

// DismissError clears the error surface.
func (c *Coordinator) DismissError() {
	c.dispatch(ClearError{})
}

// DismissIdentified clears the "ingredients identified" notice.
func (c *Coordinator) DismissIdentified() {
	c.dispatch(ShowIdentified{Show: false})
}

// ToggleMenu opens or closes the mobile navigation overlay.
func (c *Coordinator) ToggleMenu(open bool) {
	c.dispatch(ToggleMenu{Open: open})
}

// SignOut ends the authenticated session and resets all session state,
// including every feature's result slot. Stored user records survive.
func (c *Coordinator) SignOut() {
	c.auth.SignOut()
	c.dispatch(SignOutReset{})
	slog.Info("COORDINATOR: Signed out, session state reset")
}

// Submit runs one generation for the active feature. Validation failures are
// reported as ValidationError and never reach the generation boundary; the
// failure message still lands on the error surface.
func (c *Coordinator) Submit(ctx context.Context) error {
	ctx, span := otel.Tracer(curachef.TracerNameSession).Start(ctx, "Coordinator.Submit")
	defer span.End()

	feature := c.state.ActiveFeature
	span.SetAttributes(attribute.String("feature", string(feature)))

	if err := c.validateSubmit(feature); err != nil {
		c.dispatch(SubmitRejected{Message: errorMessage(err)})
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.dispatch(GenerationStart{Feature: feature})
	slog.Info("COORDINATOR: Generation started", "feature", feature)

	req := curachef.GenerationRequest{
		Feature:     feature,
		Input:       c.state.TextInput,
		Condition:   c.state.SelectedCondition,
		Image:       c.state.Image,
		Preferences: c.auth.Current().Preferences,
	}

	var err error
	switch {
	case feature == curachef.FeatureMedicalDietaryPlanner:
		err = c.runMedicalPlan(ctx, req)
	case feature.Streams():
		err = c.runStreamedRecipes(ctx, req)
	default:
		err = c.runSingleShot(ctx, req)
	}

	if err != nil {
		c.dispatch(GenerationFailed{Feature: feature, Message: errorMessage(err)})
		span.SetStatus(codes.Error, err.Error())
		slog.Error("COORDINATOR: Generation failed", "feature", feature, "error", err)
		return err
	}

	slog.Info("COORDINATOR: Generation complete", "feature", feature)
	return nil
}

// GeneratePlan runs the personalized dietary planner for the given duration.
// It reads no free-text input; the plan is derived from stored preferences.
func (c *Coordinator) GeneratePlan(ctx context.Context, duration curachef.PlanDuration) error {
	ctx, span := otel.Tracer(curachef.TracerNameSession).Start(ctx, "Coordinator.GeneratePlan")
	defer span.End()

	feature := curachef.FeaturePersonalizedDietaryPlanner
	span.SetAttributes(attribute.String("duration", string(duration)))

	var verr error
	switch {
	case c.auth.Current() == nil:
		verr = curachef.NewValidationError("Please sign in to generate content.")
	case !duration.Valid():
		verr = curachef.NewValidationError("Please choose a plan duration.")
	case c.state.Busy[feature]:
		verr = curachef.NewValidationError("A generation is already in progress for this feature.")
	}
	if verr != nil {
		c.dispatch(SubmitRejected{Message: errorMessage(verr)})
		span.SetStatus(codes.Error, verr.Error())
		return verr
	}

	c.dispatch(GenerationStart{Feature: feature})
	slog.Info("COORDINATOR: Plan generation started", "duration", duration)

	req := curachef.GenerationRequest{
		Feature:     feature,
		Duration:    duration,
		Preferences: c.auth.Current().Preferences,
	}

	result, err := c.gen.Generate(ctx, req)
	c.logGeneration(feature, "generate-plan", false, err)
	if err != nil {
		c.dispatch(GenerationFailed{Feature: feature, Message: errorMessage(err)})
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.dispatch(GenerationComplete{Feature: feature, Update: ResultUpdate{PersonalizedPlan: result.PersonalizedPlan}})
	return nil
}

// AttachImage attaches an image to the active feature and identifies the
// ingredients in it, replacing the text input with the identified list. The
// busy flag always clears, even when identification fails.
func (c *Coordinator) AttachImage(ctx context.Context, image []byte) error {
	ctx, span := otel.Tracer(curachef.TracerNameSession).Start(ctx, "Coordinator.AttachImage")
	defer span.End()

	c.dispatch(SetImage{Image: image})
	if len(image) == 0 {
		return nil
	}

	feature := c.state.ActiveFeature
	c.dispatch(GenerationStart{Feature: feature})

	ingredients, err := c.gen.IdentifyIngredients(ctx, image)
	c.logGeneration(feature, "identify-ingredients", false, err)
	if err != nil {
		c.dispatch(GenerationFailed{Feature: feature, Message: errorMessage(err)})
		span.SetStatus(codes.Error, err.Error())
		// Identification failure still ends the loading phase; the flag is
		// already cleared by GenerationFailed.
		return err
	}

	c.dispatch(SetInput{Text: ingredients})
	c.dispatch(ShowIdentified{Show: true})
	c.dispatch(GenerationComplete{Feature: feature, Update: ResultUpdate{}})
	slog.Info("COORDINATOR: Ingredients identified", "chars", len(ingredients))
	return nil
}

// ExpandPlanMeal fetches the full recipe for one meal stub of a personalized
// plan. The result goes back to the caller, not into session state; plan
// meals expand on demand and are not cached.
func (c *Coordinator) ExpandPlanMeal(ctx context.Context, title, description string) (*curachef.Recipe, error) {
	ctx, span := otel.Tracer(curachef.TracerNameSession).Start(ctx, "Coordinator.ExpandPlanMeal")
	defer span.End()

	if c.auth.Current() == nil {
		return nil, curachef.NewValidationError("Please sign in to generate content.")
	}

	recipe, err := c.gen.RecipeForMeal(ctx, title, description, c.auth.Current().Preferences)
	c.logGeneration(curachef.FeaturePersonalizedDietaryPlanner, "expand-meal", false, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return recipe, nil
}

// RecipeNutrition fetches the on-demand nutrition breakdown for a recipe.
func (c *Coordinator) RecipeNutrition(ctx context.Context, recipe curachef.Recipe) (*curachef.NutritionInfo, error) {
	ctx, span := otel.Tracer(curachef.TracerNameSession).Start(ctx, "Coordinator.RecipeNutrition")
	defer span.End()

	info, err := c.gen.NutritionForRecipe(ctx, recipe)
	c.logGeneration(c.state.ActiveFeature, "recipe-nutrition", false, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return info, nil
}

// runMedicalPlan is the one multi-step flow: the guideline plan must land
// before the recipe stream starts, so the streamed recipes merge beside
// guidelines and food lists instead of clobbering them.
func (c *Coordinator) runMedicalPlan(ctx context.Context, req curachef.GenerationRequest) error {
	result, err := c.gen.Generate(ctx, req)
	c.logGeneration(req.Feature, "generate", false, err)
	if err != nil {
		return err
	}
	c.dispatch(GenerationProgress{Feature: req.Feature, Update: ResultUpdate{DietaryPlan: result.DietaryPlan}})

	err = c.gen.GenerateRecipes(ctx, req, func(recipes []curachef.Recipe) {
		c.dispatch(GenerationComplete{Feature: req.Feature, Update: RecipesUpdate(recipes)})
	})
	c.logGeneration(req.Feature, "stream-recipes", true, err)
	return err
}

func (c *Coordinator) runStreamedRecipes(ctx context.Context, req curachef.GenerationRequest) error {
	err := c.gen.GenerateRecipes(ctx, req, func(recipes []curachef.Recipe) {
		c.dispatch(GenerationComplete{Feature: req.Feature, Update: RecipesUpdate(recipes)})
	})
	c.logGeneration(req.Feature, "stream-recipes", true, err)
	return err
}

func (c *Coordinator) runSingleShot(ctx context.Context, req curachef.GenerationRequest) error {
	result, err := c.gen.Generate(ctx, req)
	c.logGeneration(req.Feature, "generate", false, err)
	if err != nil {
		return err
	}

	update := ResultUpdate{
		Nutrition:        result.Nutrition,
		DietaryPlan:      result.DietaryPlan,
		PersonalizedPlan: result.PersonalizedPlan,
	}
	if result.Recipes != nil {
		update = ResultUpdate{Recipes: result.Recipes, HasRecipes: true}
	}
	c.dispatch(GenerationComplete{Feature: req.Feature, Update: update})
	return nil
}

func (c *Coordinator) validateSubmit(feature curachef.Feature) error {
	if c.auth.Current() == nil {
		return curachef.NewValidationError("Please sign in to generate content.")
	}
	if !feature.Generates() {
		return curachef.NewValidationError("This feature does not generate content.")
	}
	if feature == curachef.FeaturePersonalizedDietaryPlanner {
		// Plans are built from stored preferences and a duration, not free
		// text; GeneratePlan is the only path that carries a duration.
		return curachef.NewValidationError("Please choose a plan duration to generate a personalized plan.")
	}
	if strings.TrimSpace(c.state.TextInput) == "" {
		return curachef.NewValidationError("Please provide some input before generating.")
	}
	if feature == curachef.FeatureMedicalDietaryPlanner && c.state.SelectedCondition == curachef.ConditionNone {
		return curachef.NewValidationError("Please select a medical condition for the dietary plan.")
	}
	if c.state.Busy[feature] {
		return curachef.NewValidationError("A generation is already in progress for this feature.")
	}
	return nil
}

func (c *Coordinator) logGeneration(feature curachef.Feature, op string, streamed bool, genErr error) {
	record := curachef.GenerationRecord{
		Feature:   feature,
		Operation: op,
		Timestamp: time.Now(),
		Streamed:  streamed,
	}
	if genErr != nil {
		record.Error = genErr.Error()
	}
	if err := c.logger.LogGeneration(record); err != nil {
		slog.Warn("COORDINATOR: Failed to log generation record", "error", err)
	}
}

// errorMessage picks the user-facing text for the error surface: domain
// errors carry their own message, anything else gets a generic line.
func errorMessage(err error) string {
	if curachef.IsValidation(err) || curachef.IsGeneration(err) || curachef.IsAuth(err) {
		return err.Error()
	}
	return "An unexpected error occurred. Please try again."
}
