package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// demoModel is a deterministic offline stand-in for a language model. It lets
// the chat and serve commands run end to end without a provider key; wire a
// real ports.LanguageModel implementation for production use.
type demoModel struct{}

var (
	demoDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	demoBudgetRe = regexp.MustCompile(`\b(\d{3,6})\s*(eur|euro|usd|try|tl)?\b`)
	demoCities   = []string{
		"paris", "rome", "london", "tokyo", "istanbul", "antalya",
		"barcelona", "amsterdam", "berlin", "lisbon", "bali", "new york",
	}
)

func (demoModel) Complete(_ context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	switch {
	case strings.Contains(req.System, "intent classifier"):
		return &ports.Completion{Content: `{"category": "planning"}`}, nil

	case strings.Contains(req.System, "escalation signals"):
		return &ports.Completion{Content: `{"explicit_human_request": false, "frustration_level": 1, "issue_complexity": 1, "user_sentiment": "neutral", "involves_payment": false, "recommended_action": "continue"}`}, nil

	case req.StrictJSON:
		return demoSharpen(req)

	case len(req.Tools) > 0:
		return demoToolCall(req)

	default:
		return demoText(req)
	}
}

// demoSharpen fakes the slot-filling contract with regex extraction.
func demoSharpen(req ports.CompletionRequest) (*ports.Completion, error) {
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			last = strings.ToLower(req.Messages[i].Content)
			break
		}
	}

	extracted := map[string]any{}
	for _, city := range demoCities {
		if strings.Contains(last, city) {
			extracted["destination"] = titleCase(city)
			break
		}
	}
	if dates := demoDateRe.FindAllString(last, 2); len(dates) >= 1 {
		extracted["departure_date"] = dates[0]
		if len(dates) >= 2 {
			extracted["return_date"] = dates[1]
		}
	}
	if m := demoBudgetRe.FindStringSubmatch(last); m != nil && !demoDateRe.MatchString(m[0]) {
		extracted["budget_max"] = m[1]
	}

	out := map[string]any{
		"extracted":             extracted,
		"phase_complete":        len(extracted) > 0,
		"all_required_complete": false,
		"detected_language":     "en",
		"response":              demoNextQuestion(req.System, extracted),
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &ports.Completion{Content: string(data)}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func demoNextQuestion(system string, extracted map[string]any) string {
	switch {
	case strings.Contains(system, "PHASE 1"):
		if _, ok := extracted["destination"]; ok {
			return "Great choice! When would you like to leave and come back? (YYYY-MM-DD works best for me)"
		}
		return "Where would you like to go? I know Paris, Rome, Tokyo, Istanbul and a few more."
	case strings.Contains(system, "PHASE 2"):
		return "When would you like to leave and come back? Dates like 2026-09-10 work best."
	case strings.Contains(system, "PHASE 3"):
		return "Do you have a rough budget in mind, or should I skip that?"
	default:
		return "That all sounds good. Shall I start searching?"
	}
}

// demoToolCall always reaches for the flight search.
func demoToolCall(req ports.CompletionRequest) (*ports.Completion, error) {
	for _, tool := range req.Tools {
		if tool.Name == domain.ToolSearchFlights || tool.Name == domain.ToolCreateBooking {
			return &ports.Completion{ToolCalls: []domain.ToolCall{
				{ID: uuid.NewString(), Name: tool.Name, Args: map[string]any{}},
			}}, nil
		}
	}
	return &ports.Completion{Content: "I have everything I need."}, nil
}

func demoText(req ports.CompletionRequest) (*ports.Completion, error) {
	if strings.Contains(req.System, "NUMBERED list") {
		return &ports.Completion{Content: "Here are your options:\n\n1. Morning flight, 120 EUR\n2. Midday flight, 150 EUR\n3. Evening flight, 95 EUR\n\nWhich one would you like?"}, nil
	}
	if strings.Contains(req.System, "selected an option") {
		return &ports.Completion{Content: "You picked that option. Shall I go ahead and book it? (yes/no)"}, nil
	}
	return &ports.Completion{Content: "Happy to help with anything travel related."}, nil
}

// demoDispatcher returns canned tool results so the flow can be exercised
// without a running tool server.
type demoDispatcher struct{}

func (demoDispatcher) Dispatch(_ context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	switch call.Name {
	case domain.ToolSearchFlights:
		return domain.ToolResult{ID: call.ID, Content: `{"flights": [
			{"id": "WD101", "depart": "08:15", "price": 120, "currency": "EUR"},
			{"id": "WD205", "depart": "12:40", "price": 150, "currency": "EUR"},
			{"id": "WD309", "depart": "19:05", "price": 95, "currency": "EUR"}
		]}`}, nil
	case domain.ToolSearchHotels:
		return domain.ToolResult{ID: call.ID, Content: `{"hotels": [
			{"name": "Hotel Meridian", "stars": 4, "price_per_night": 110},
			{"name": "Pension Aurora", "stars": 3, "price_per_night": 65}
		]}`}, nil
	case domain.ToolCreateBooking:
		return domain.ToolResult{ID: call.ID, Content: fmt.Sprintf(`{"booking_id": "BK-%s", "status": "confirmed"}`, uuid.NewString()[:8])}, nil
	default:
		return domain.ToolResult{ID: call.ID, Content: "{}"}, nil
	}
}
