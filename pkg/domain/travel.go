package domain

import (
	"fmt"
	"strings"
)

// Slot field names tracked in TravelContext.CollectedFields.
const (
	FieldDestination    = "destination"
	FieldOrigin         = "origin"
	FieldDepartureDate  = "departure_date"
	FieldReturnDate     = "return_date"
	FieldMotivation     = "motivation"
	FieldBudgetMax      = "budget_max"
	FieldBudgetCurrency = "budget_currency"
	FieldTransportation = "transportation_pref"
	FieldActivity       = "activity_pref"
	FieldAccommodation  = "accommodation_pref"
	FieldDietary        = "dietary_pref"
)

// RequiredFields must all be collected before a plan can be searched.
var RequiredFields = []string{FieldDestination, FieldDepartureDate, FieldReturnDate}

// ImportantOptionalFields improve results when present but never block a plan.
var ImportantOptionalFields = []string{FieldMotivation, FieldBudgetMax}

// PreferenceFields are fully optional; collected only when the user volunteers them.
var PreferenceFields = []string{FieldTransportation, FieldActivity, FieldDietary}

// TravelContext is the mutable bag of trip facts collected across turns.
type TravelContext struct {
	Destination        string  `json:"destination,omitempty"`
	DestinationDisplay string  `json:"destination_display,omitempty"`
	Origin             string  `json:"origin,omitempty"`
	OriginDisplay      string  `json:"origin_display,omitempty"`
	DepartureDate      string  `json:"departure_date,omitempty"` // YYYY-MM-DD
	ReturnDate         string  `json:"return_date,omitempty"`    // YYYY-MM-DD
	Travelers          int     `json:"travelers"`
	BudgetMax          float64 `json:"budget_max,omitempty"`
	BudgetCurrency     string  `json:"budget_currency,omitempty"`
	BudgetSkipped      bool    `json:"budget_skipped,omitempty"`
	Motivation         string  `json:"motivation,omitempty"`
	TransportationPref string  `json:"transportation_pref,omitempty"`
	ActivityPref       string  `json:"activity_pref,omitempty"`
	AccommodationPref  string  `json:"accommodation_pref,omitempty"`
	DietaryPref        string  `json:"dietary_pref,omitempty"`

	// CollectedFields tracks which slots are filled. It only grows during
	// sharpening; order is insertion order and irrelevant for logic.
	CollectedFields []string `json:"collected_fields"`

	PlanSummary  string `json:"plan_summary,omitempty"`
	PlanApproved bool   `json:"plan_approved,omitempty"`

	SelectedFlight map[string]any `json:"selected_flight,omitempty"`
	SelectedHotel  map[string]any `json:"selected_hotel,omitempty"`
	BookingIDs     []string       `json:"booking_ids,omitempty"`
}

// NewTravelContext returns an empty context with the single-traveler default.
func NewTravelContext() *TravelContext {
	return &TravelContext{
		Travelers:       1,
		BudgetCurrency:  "EUR",
		CollectedFields: []string{},
	}
}

// Collected reports whether the named field has been filled.
func (t *TravelContext) Collected(field string) bool {
	for _, f := range t.CollectedFields {
		if f == field {
			return true
		}
	}
	return false
}

// MarkCollected records the field as filled. The union is idempotent:
// marking an already-collected field never duplicates the entry.
func (t *TravelContext) MarkCollected(field string) {
	if !t.Collected(field) {
		t.CollectedFields = append(t.CollectedFields, field)
	}
}

// MissingRequired lists the required fields still to be collected.
func (t *TravelContext) MissingRequired() []string {
	var missing []string
	for _, f := range RequiredFields {
		if !t.Collected(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether all required fields are collected.
func (t *TravelContext) IsComplete() bool {
	return len(t.MissingRequired()) == 0
}

// ApplyDefaults fills still-missing optional fields with fixed defaults.
// Required fields are never defaulted.
func (t *TravelContext) ApplyDefaults() {
	if t.Motivation == "" {
		t.Motivation = "general"
	}
	if t.BudgetCurrency == "" {
		t.BudgetCurrency = "EUR"
	}
	if t.TransportationPref == "" {
		t.TransportationPref = "flexible"
	}
	if t.ActivityPref == "" {
		t.ActivityPref = "flexible"
	}
	if t.AccommodationPref == "" {
		t.AccommodationPref = "hotel"
	}
	if t.Travelers == 0 {
		t.Travelers = 1
	}
}

// destinationDisplayOr falls back to the raw slot when no display name exists.
func (t *TravelContext) destinationDisplayOr() string {
	if t.DestinationDisplay != "" {
		return t.DestinationDisplay
	}
	return t.Destination
}

func (t *TravelContext) originDisplayOr() string {
	if t.OriginDisplay != "" {
		return t.OriginDisplay
	}
	return t.Origin
}

// BuildPlanSummary produces the human-readable plan shown for approval.
func (t *TravelContext) BuildPlanSummary(language string) string {
	var lines []string
	if language == "tr" {
		lines = append(lines, fmt.Sprintf("📍 Destinasyon: %s", t.destinationDisplayOr()))
		if origin := t.originDisplayOr(); origin != "" {
			lines = append(lines, fmt.Sprintf("🛫 Kalkış: %s", origin))
		}
		lines = append(lines, fmt.Sprintf("📅 Tarih: %s → %s", t.DepartureDate, t.ReturnDate))
		if t.BudgetMax > 0 {
			lines = append(lines, fmt.Sprintf("💰 Bütçe: %.0f %s", t.BudgetMax, t.BudgetCurrency))
		}
		if t.Motivation != "" && t.Motivation != "general" {
			lines = append(lines, fmt.Sprintf("🎯 Amaç: %s", t.Motivation))
		}
	} else {
		lines = append(lines, fmt.Sprintf("📍 Destination: %s", t.destinationDisplayOr()))
		if origin := t.originDisplayOr(); origin != "" {
			lines = append(lines, fmt.Sprintf("🛫 Origin: %s", origin))
		}
		lines = append(lines, fmt.Sprintf("📅 Dates: %s → %s", t.DepartureDate, t.ReturnDate))
		if t.BudgetMax > 0 {
			lines = append(lines, fmt.Sprintf("💰 Budget: %.0f %s", t.BudgetMax, t.BudgetCurrency))
		}
		if t.Motivation != "" && t.Motivation != "general" {
			lines = append(lines, fmt.Sprintf("🎯 Purpose: %s", t.Motivation))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCollected summarizes the facts gathered so far for prompt context.
func (t *TravelContext) FormatCollected(language string) string {
	tr := language == "tr"
	label := func(trLabel, enLabel string) string {
		if tr {
			return trLabel
		}
		return enLabel
	}

	var lines []string
	if t.Motivation != "" {
		lines = append(lines, fmt.Sprintf("✓ %s: %s", label("Motivasyon", "Motivation"), t.Motivation))
	}
	if dest := t.destinationDisplayOr(); dest != "" {
		lines = append(lines, fmt.Sprintf("✓ %s: %s", label("Destinasyon", "Destination"), dest))
	}
	if origin := t.originDisplayOr(); origin != "" {
		lines = append(lines, fmt.Sprintf("✓ %s: %s", label("Kalkış", "Origin"), origin))
	}
	if t.DepartureDate != "" {
		lines = append(lines, fmt.Sprintf("✓ %s: %s", label("Gidiş", "Departure"), t.DepartureDate))
	}
	if t.ReturnDate != "" {
		lines = append(lines, fmt.Sprintf("✓ %s: %s", label("Dönüş", "Return"), t.ReturnDate))
	}
	if t.BudgetMax > 0 {
		lines = append(lines, fmt.Sprintf("✓ %s: %.0f %s", label("Bütçe", "Budget"), t.BudgetMax, t.BudgetCurrency))
	}
	if len(lines) == 0 {
		if tr {
			return "Henüz bilgi yok"
		}
		return "Nothing collected yet"
	}
	return strings.Join(lines, "\n")
}

// destinationIdeas maps a travel motivation to a few starter suggestions.
var destinationIdeas = map[string][]string{
	"romantic":   {"Paris", "Venice", "Santorini", "Maldives"},
	"adventure":  {"Iceland", "New Zealand", "Costa Rica", "Nepal"},
	"relaxation": {"Bali", "Thailand", "Maldives", "Hawaii"},
	"culture":    {"Rome", "Tokyo", "Istanbul", "Barcelona"},
	"budget":     {"Portugal", "Vietnam", "Greece", "Turkey"},
	"beach":      {"Antalya", "Bali", "Maldives", "Thailand"},
	"city":       {"London", "New York", "Paris", "Tokyo"},
}

// SuggestDestinations returns starter destinations for a motivation, or nil
// when the motivation has no curated list.
func SuggestDestinations(motivation string) []string {
	ideas, ok := destinationIdeas[strings.ToLower(motivation)]
	if !ok {
		return nil
	}
	out := make([]string, len(ideas))
	copy(out, ideas)
	return out
}
