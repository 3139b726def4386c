// Package session holds the feature/session state machine. State is an
// explicit, serializable value transitioned only through a closed set of
// actions; Reduce never mutates its input, which keeps every transition
// testable in isolation.
package session

import (
	"curachef"
)

// State is the whole per-session application state.
type State struct {
	ActiveFeature     curachef.Feature                           `json:"activeFeature"`
	TextInput         string                                     `json:"textInput"`
	SelectedCondition curachef.MedicalCondition                  `json:"selectedCondition"`
	Image             []byte                                     `json:"image,omitempty"`
	Busy              map[curachef.Feature]bool                  `json:"busy"`
	Error             string                                     `json:"error,omitempty"`
	Results           map[curachef.Feature]curachef.FeatureResult `json:"results"`
	ShowIdentified    bool                                       `json:"showIdentified"`
	MenuOpen          bool                                       `json:"menuOpen"`
}

// NewState returns the initial session state: recipe generator active, one
// empty result slot per generative feature.
func NewState() State {
	s := State{
		ActiveFeature:     curachef.FeatureRecipeGenerator,
		SelectedCondition: curachef.ConditionNone,
		Busy:              make(map[curachef.Feature]bool),
		Results:           make(map[curachef.Feature]curachef.FeatureResult),
	}
	for _, f := range []curachef.Feature{
		curachef.FeatureRecipeGenerator,
		curachef.FeatureNutritionalAnalyzer,
		curachef.FeatureLeftoverRecommender,
		curachef.FeatureMedicalDietaryPlanner,
		curachef.FeaturePersonalizedDietaryPlanner,
	} {
		s.Results[f] = curachef.FeatureResult{}
	}
	return s
}

// Generating reports whether the active feature has a call in flight.
func (s State) Generating() bool {
	return s.Busy[s.ActiveFeature]
}

func (s State) clone() State {
	next := s
	next.Busy = make(map[curachef.Feature]bool, len(s.Busy))
	for k, v := range s.Busy {
		next.Busy[k] = v
	}
	next.Results = make(map[curachef.Feature]curachef.FeatureResult, len(s.Results))
	for k, v := range s.Results {
		next.Results[k] = v
	}
	return next
}

// Action is one named state transition.
type Action interface {
	isAction()
}

// SelectFeature activates a feature and clears the per-feature input state
// (text, image, condition) plus any mobile navigation overlay.
type SelectFeature struct {
	Feature curachef.Feature
}

// SetInput replaces the free-text input.
type SetInput struct {
	Text string
}

// SetImage attaches or clears the input image.
type SetImage struct {
	Image []byte
}

// SetCondition selects the medical condition.
type SetCondition struct {
	Condition curachef.MedicalCondition
}

// GenerationStart marks a feature busy, clears any error, and resets the
// feature's result slot to empty before any new data arrives.
type GenerationStart struct {
	Feature curachef.Feature
}

// GenerationProgress reconciles a partial outcome into the feature's slot
// while the feature stays busy. Used by multi-step features whose earlier
// results must land before a later call is issued.
type GenerationProgress struct {
	Feature curachef.Feature
	Update  ResultUpdate
}

// GenerationComplete reconciles the outcome into the feature's slot and
// clears the busy flag.
type GenerationComplete struct {
	Feature curachef.Feature
	Update  ResultUpdate
}

// GenerationFailed clears the busy flag and surfaces the failure message.
// The slot stays in whatever state the generation left it (reset, for a
// fresh attempt).
type GenerationFailed struct {
	Feature curachef.Feature
	Message string
}

// SubmitRejected surfaces a pre-boundary validation failure. Busy flags are
// untouched: a rejected submit never started a generation, and the rejection
// must not release a slot another call is still holding.
type SubmitRejected struct {
	Message string
}

// ClearError dismisses the error surface.
type ClearError struct{}

// ShowIdentified toggles the transient "ingredients identified" notice.
type ShowIdentified struct {
	Show bool
}

// ToggleMenu opens or closes the mobile navigation overlay.
type ToggleMenu struct {
	Open bool
}

// SignOutReset returns the session to its initial state, discarding every
// per-feature slot.
type SignOutReset struct{}

func (SelectFeature) isAction()      {}
func (SetInput) isAction()           {}
func (SetImage) isAction()           {}
func (SetCondition) isAction()       {}
func (GenerationStart) isAction()    {}
func (GenerationProgress) isAction() {}
func (GenerationComplete) isAction() {}
func (GenerationFailed) isAction()   {}
func (SubmitRejected) isAction()     {}
func (ClearError) isAction()         {}
func (ShowIdentified) isAction()     {}
func (ToggleMenu) isAction()         {}
func (SignOutReset) isAction()       {}

// ResultUpdate is the reconciler input: the fields it carries land on the
// slot, fields it does not carry survive. Because GenerationStart resets the
// slot, a single-step feature's outcome fully replaces it, while the medical
// planner's streamed recipes merge beside the guidelines written earlier.
type ResultUpdate struct {
	Recipes          []curachef.Recipe
	HasRecipes       bool
	Nutrition        *curachef.NutritionInfo
	DietaryPlan      *curachef.DietaryPlan
	PersonalizedPlan *curachef.PersonalizedPlan
}

// RecipesUpdate builds an update that sets the slot's recipe list, even when
// the list is empty.
func RecipesUpdate(recipes []curachef.Recipe) ResultUpdate {
	return ResultUpdate{Recipes: recipes, HasRecipes: true}
}

func (u ResultUpdate) apply(cur curachef.FeatureResult) curachef.FeatureResult {
	next := cur
	if u.HasRecipes {
		next.Recipes = u.Recipes
	}
	if u.Nutrition != nil {
		next.Nutrition = u.Nutrition
	}
	if u.DietaryPlan != nil {
		next.DietaryPlan = u.DietaryPlan
	}
	if u.PersonalizedPlan != nil {
		next.PersonalizedPlan = u.PersonalizedPlan
	}
	return next
}

// Reduce applies one action and returns the next state. Unknown actions are
// ignored.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case SelectFeature:
		next.ActiveFeature = a.Feature
		next.TextInput = ""
		next.Image = nil
		next.SelectedCondition = curachef.ConditionNone
		next.MenuOpen = false

	case SetInput:
		next.TextInput = a.Text

	case SetImage:
		next.Image = a.Image
		next.ShowIdentified = false

	case SetCondition:
		next.SelectedCondition = a.Condition

	case GenerationStart:
		next.Busy[a.Feature] = true
		next.Error = ""
		next.Results[a.Feature] = curachef.FeatureResult{}

	case GenerationProgress:
		next.Results[a.Feature] = a.Update.apply(next.Results[a.Feature])

	case GenerationComplete:
		next.Busy[a.Feature] = false
		next.Results[a.Feature] = a.Update.apply(next.Results[a.Feature])

	case GenerationFailed:
		next.Busy[a.Feature] = false
		next.Error = a.Message

	case SubmitRejected:
		next.Error = a.Message

	case ClearError:
		next.Error = ""

	case ShowIdentified:
		next.ShowIdentified = a.Show

	case ToggleMenu:
		next.MenuOpen = a.Open

	case SignOutReset:
		return NewState()
	}

	return next
}
