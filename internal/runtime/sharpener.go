package runtime

import (
	"context"
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// sharpenerTurnLimit is the number of collection rounds after which optional
// fields stop being asked for and get defaulted instead.
const sharpenerTurnLimit = 3

// sharpenerOutput is the model's structured reply for one collection round.
type sharpenerOutput struct {
	Extracted           map[string]any `json:"extracted"`
	PhaseComplete       bool           `json:"phase_complete"`
	AllRequiredComplete bool           `json:"all_required_complete"`
	DetectedLanguage    string         `json:"detected_language"`
	Response            string         `json:"response"`
}

// extractedFields is the typed view of the extracted map. Weak typing absorbs
// models that return numbers as strings and vice versa.
type extractedFields struct {
	Destination        string  `mapstructure:"destination"`
	Origin             string  `mapstructure:"origin"`
	DepartureDate      string  `mapstructure:"departure_date"`
	ReturnDate         string  `mapstructure:"return_date"`
	Travelers          int     `mapstructure:"travelers"`
	Motivation         string  `mapstructure:"motivation"`
	BudgetMax          float64 `mapstructure:"budget_max"`
	BudgetCurrency     string  `mapstructure:"budget_currency"`
	BudgetSkipped      bool    `mapstructure:"budget_skipped"`
	TransportationPref string  `mapstructure:"transportation_pref"`
	ActivityPref       string  `mapstructure:"activity_pref"`
	AccommodationPref  string  `mapstructure:"accommodation_pref"`
	DietaryPref        string  `mapstructure:"dietary_pref"`
}

// runSharpener executes one slot-filling round: extract fields from the
// latest user message, merge them into the travel context, and either keep
// collecting or declare the plan ready.
func (e *Engine) runSharpener(ctx context.Context, state *domain.TurnState) error {
	prompt := sharpenerPrompt(state.Travel, state.SharpeningTurns, e.clock())

	resp, err := e.complete(ctx, ports.CompletionRequest{
		System:     prompt,
		Messages:   domain.Tail(state.Messages, 10),
		StrictJSON: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Degrade to a fixed apology; the user can simply answer again.
		e.logger.Warn("sharpener model call failed", "err", err)
		state.Messages = append(state.Messages, domain.NewAssistantMessage(sharpenerApology(state.Language)))
		state.SharpeningTurns++
		state.NeedsUserInput = true
		return nil
	}

	out := parseSharpenerOutput(resp.Content)

	if out.DetectedLanguage == "en" || out.DetectedLanguage == "tr" {
		state.Language = out.DetectedLanguage
	}

	e.mergeExtracted(state.Travel, out.Extracted)

	if state.Travel.Destination == "" && state.Travel.Motivation != "" {
		state.AddSuggestions(domain.SuggestDestinations(state.Travel.Motivation)...)
	}

	complete := state.Travel.IsComplete() || out.AllRequiredComplete

	if !complete && state.SharpeningTurns >= sharpenerTurnLimit {
		// Stop pressing for optional details; required fields keep being asked.
		state.Travel.ApplyDefaults()
	}

	if complete {
		state.Travel.ApplyDefaults()
		state.Travel.PlanSummary = state.Travel.BuildPlanSummary(state.Language)
		state.PlanReady = true
		state.NeedsUserInput = false
		state.PreviousPhase = state.CurrentPhase
		state.CurrentPhase = domain.PhaseReadyForAction
	} else {
		state.SharpeningTurns++
		state.NeedsUserInput = true
	}

	response := out.Response
	if response == "" {
		response = state.Travel.PlanSummary
	}
	if response != "" {
		state.Messages = append(state.Messages, domain.NewAssistantMessage(response))
	}

	e.logger.Debug("sharpener round finished",
		"conversation_id", state.ConversationID,
		"collected", state.Travel.CollectedFields,
		"plan_ready", state.PlanReady,
		"turns", state.SharpeningTurns,
	)
	return nil
}

// parseSharpenerOutput decodes the model's JSON. Malformed output is
// tolerated: the raw text becomes the response with nothing extracted.
func parseSharpenerOutput(content string) sharpenerOutput {
	var out sharpenerOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return sharpenerOutput{Response: content}
	}
	return out
}

// mergeExtracted folds non-empty extracted values into the travel context,
// marking each filled field as collected. Merging the same field twice is
// harmless; the collected set never duplicates.
func (e *Engine) mergeExtracted(travel *domain.TravelContext, extracted map[string]any) {
	if len(extracted) == 0 {
		return
	}

	var fields extractedFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fields,
		WeaklyTypedInput: true,
	})
	if err != nil {
		e.logger.Warn("extraction decoder setup failed", "err", err)
		return
	}
	if err := decoder.Decode(extracted); err != nil {
		e.logger.Warn("extraction decode failed, discarding this round", "err", err)
		return
	}

	if fields.Destination != "" {
		travel.Destination = fields.Destination
		travel.MarkCollected(domain.FieldDestination)
	}
	if fields.Origin != "" {
		travel.Origin = fields.Origin
		travel.MarkCollected(domain.FieldOrigin)
	}
	if fields.DepartureDate != "" {
		travel.DepartureDate = fields.DepartureDate
		travel.MarkCollected(domain.FieldDepartureDate)
	}
	if fields.ReturnDate != "" {
		travel.ReturnDate = fields.ReturnDate
		travel.MarkCollected(domain.FieldReturnDate)
	}
	if fields.Travelers > 0 {
		travel.Travelers = fields.Travelers
	}
	if fields.Motivation != "" {
		travel.Motivation = fields.Motivation
		travel.MarkCollected(domain.FieldMotivation)
	}
	if fields.BudgetMax > 0 {
		travel.BudgetMax = fields.BudgetMax
		travel.MarkCollected(domain.FieldBudgetMax)
	}
	if fields.BudgetCurrency != "" {
		travel.BudgetCurrency = fields.BudgetCurrency
		travel.MarkCollected(domain.FieldBudgetCurrency)
	}
	if fields.BudgetSkipped {
		travel.BudgetSkipped = true
	}
	if fields.TransportationPref != "" {
		travel.TransportationPref = fields.TransportationPref
		travel.MarkCollected(domain.FieldTransportation)
	}
	if fields.ActivityPref != "" {
		travel.ActivityPref = fields.ActivityPref
		travel.MarkCollected(domain.FieldActivity)
	}
	if fields.AccommodationPref != "" {
		travel.AccommodationPref = fields.AccommodationPref
		travel.MarkCollected(domain.FieldAccommodation)
	}
	if fields.DietaryPref != "" {
		travel.DietaryPref = fields.DietaryPref
		travel.MarkCollected(domain.FieldDietary)
	}
}

func sharpenerApology(language string) string {
	if language == "tr" {
		return "Üzgünüm, bir sorun oluştu. Lütfen tekrar söyler misiniz?"
	}
	return "Sorry, something went wrong on my end. Could you say that again?"
}
