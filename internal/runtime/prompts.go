package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// Clock supplies the current time to prompt builders so date-sensitive
// instructions stay testable.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// classifierPrompt asks the model to bucket a fresh conversation into one of
// the three intent categories.
func classifierPrompt(userMessage string) string {
	return fmt.Sprintf(`You are an intent classifier for a travel support assistant.

Classify the user's message into exactly one category:

- "planning": the user wants to plan, search for or book a new trip
  (flights, hotels, destinations, itineraries).
- "reactive": the user has an issue with an EXISTING booking
  (cancellation, modification, refund, complaint about a booked trip).
- "info": the user asks a general question (visa rules, baggage policy,
  weather, destination facts) without planning or modifying anything.

The user may write in English or Turkish.

Also note which trip details the message already contains:
- a destination
- travel dates
- the number of travelers

USER MESSAGE: %s

Return JSON only:
{"category": "planning" | "reactive" | "info", "has_destination": true|false, "has_dates": true|false, "has_travelers": true|false}`, userMessage)
}

// sharpenerPrompt builds the slot-filling system prompt for the current
// collection phase. The model both extracts structured fields from the user's
// latest message and produces the next conversational reply.
func sharpenerPrompt(travel *domain.TravelContext, turns int, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are a travel planning assistant gathering trip details through natural conversation.\n\n")
	fmt.Fprintf(&b, "Today's date is %s.\n\n", now.Format("2006-01-02"))

	switch {
	case !travel.Collected(domain.FieldDestination):
		b.WriteString("PHASE 1 - DESTINATION. Learn why the user is traveling (business, romantic, adventure, relaxation, culture, beach, city) and where they want to go.\n")
		if travel.Motivation != "" {
			if ideas := domain.SuggestDestinations(travel.Motivation); len(ideas) > 0 {
				fmt.Fprintf(&b, "The user has no destination yet; you may suggest: %s.\n", strings.Join(ideas, ", "))
			}
		}
	case !travel.Collected(domain.FieldDepartureDate) || !travel.Collected(domain.FieldReturnDate):
		b.WriteString("PHASE 2 - DATES. Ask for the departure and return dates. If the user gives a relative date (\"next Friday\", \"in two weeks\") or a duration (\"for 5 days\"), resolve both dates against today's date.\n")
	case !travel.Collected(domain.FieldBudgetMax) && !travel.BudgetSkipped:
		b.WriteString("PHASE 3 - BUDGET. Ask for a rough budget and its currency. The user may skip this; if they decline, record the skip and move on.\n")
	default:
		b.WriteString("PHASE 4 - SUMMARY. All details are collected. Present a short plan summary and ask the user to confirm it before searching.\n")
	}

	b.WriteString("\nCOLLECTED SO FAR:\n")
	b.WriteString(travel.FormatCollected("en"))

	if turns >= 3 {
		b.WriteString("\nThe user has answered several rounds already. Do not press for optional details; apply sensible defaults and move toward the summary.\n")
	}

	b.WriteString(`
Respond STRICTLY as JSON:
{
    "extracted": {<field_name>: <value> for every detail found in the user's latest message, using snake_case field names: destination, origin, departure_date (YYYY-MM-DD), return_date (YYYY-MM-DD), travelers (number), motivation, budget_max (number), budget_currency, budget_skipped (true when the user declines to give a budget), transportation_pref, activity_pref, accommodation_pref, dietary_pref},
    "phase_complete": true if the current phase's fields are now all known,
    "all_required_complete": true if destination, departure_date and return_date are all known,
    "detected_language": "en" or "tr" from the user's latest message,
    "response": "your conversational reply to the user, in the user's language"
}

Extract only what the user actually said. Never invent values.`)

	return b.String()
}

// actionSearchPrompt instructs the model to call the search tools for the
// collected plan.
func actionSearchPrompt(travel *domain.TravelContext, now time.Time) string {
	var b strings.Builder
	b.WriteString("You are a travel booking assistant. The user approved this plan:\n\n")
	b.WriteString(travel.BuildPlanSummary("en"))
	fmt.Fprintf(&b, "\nToday's date is %s.\n\n", now.Format("2006-01-02"))
	b.WriteString(`Use the available tools to search for options:
1. Resolve the destination and origin to location codes first if needed.
2. Search flights for the departure date (and return date if set).
3. Search hotels for the stay.

Call the tools now. Do not describe what you would do; do it.`)
	return b.String()
}

// actionPresentPrompt turns raw tool output into a numbered option list.
func actionPresentPrompt(language string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	return fmt.Sprintf(`You are a travel booking assistant. The search results are included in the conversation below.

Present the options to the user as a clear NUMBERED list (1., 2., 3., ...), with price, times and the most relevant details for each option. Keep it scannable. Finish by asking which option the user would like, or whether they want something adjusted.

Respond in %s. Do not call any tools.`, lang)
}

// actionConfirmPrompt restates a chosen option and asks for a final go-ahead.
func actionConfirmPrompt(selection *Selection, language string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	return fmt.Sprintf(`You are a travel booking assistant. The user selected an option (%s selection, option %d) from the list you presented earlier in this conversation.

Restate exactly which option they chose with its full details (price, times, names), then ask them to confirm the booking with a clear yes/no question. Do not book anything yet and do not call any tools.

Respond in %s.`, selection.Type, selection.Value, lang)
}

// actionBookPrompt instructs the model to execute the booking via tools.
func actionBookPrompt(travel *domain.TravelContext, language string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	var b strings.Builder
	b.WriteString("You are a travel booking assistant. The user CONFIRMED the selected option from this conversation. Execute the booking now with the booking tool.\n\n")
	b.WriteString("Trip context:\n")
	b.WriteString(travel.FormatCollected("en"))
	fmt.Fprintf(&b, "\nUse placeholder passenger details where real ones are unavailable. After the tool returns, summarize the booking result for the user in %s.\n", lang)
	return b.String()
}

// reactivePrompt handles existing-booking issues: lookups, cancellations,
// modifications.
func reactivePrompt(customerID, language string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	return fmt.Sprintf(`You are a travel support assistant helping a customer with an EXISTING booking.

Customer ID: %s

Use the available tools to look up the customer's bookings before acting. For cancellations or modifications, confirm which booking is meant, act via the tools, and report the outcome plainly, including any fees or refund amounts the tools return.

Respond in %s.`, customerID, lang)
}

// infoPrompt answers general questions, optionally grounded on retrieved
// reference passages.
func infoPrompt(retrieved, language string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	var b strings.Builder
	b.WriteString("You are a travel information assistant. Answer the user's question accurately and concisely.\n")
	if retrieved != "" {
		b.WriteString("\nREFERENCE MATERIAL (use when relevant, ignore when not):\n")
		b.WriteString(retrieved)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nIf the question touches bookings or payments you cannot verify, say so instead of guessing. Respond in %s.\n", lang)
	return b.String()
}

// completionText is the deterministic end-of-flow message; no model call.
func completionText(travel *domain.TravelContext, language string) string {
	if language == "tr" {
		var b strings.Builder
		b.WriteString("Rezervasyonunuz tamamlandı! 🎉\n\n")
		if travel.Destination != "" {
			fmt.Fprintf(&b, "%s seyahatiniz için her şey hazır.\n", travel.Destination)
		}
		if len(travel.BookingIDs) > 0 {
			fmt.Fprintf(&b, "Rezervasyon numaralarınız: %s\n", strings.Join(travel.BookingIDs, ", "))
		}
		b.WriteString("\nBaşka bir konuda yardımcı olabilir miyim?")
		return b.String()
	}

	var b strings.Builder
	b.WriteString("Your booking is complete! 🎉\n\n")
	if travel.Destination != "" {
		fmt.Fprintf(&b, "Everything is set for your trip to %s.\n", travel.Destination)
	}
	if len(travel.BookingIDs) > 0 {
		fmt.Fprintf(&b, "Your booking references: %s\n", strings.Join(travel.BookingIDs, ", "))
	}
	b.WriteString("\nIs there anything else I can help you with?")
	return b.String()
}

// handoffText is the deterministic human-handoff message shown when the
// analyzer decides to escalate.
func handoffText(assessment Assessment, travel *domain.TravelContext, language string) string {
	if language == "tr" {
		var b strings.Builder
		b.WriteString("Sizi bir müşteri temsilcisine aktarıyorum. 🤝\n\n")
		if assessment.Urgency == "high" {
			b.WriteString("Talebiniz öncelikli olarak işaretlendi; en kısa sürede bir temsilci sizinle ilgilenecek.\n")
		} else {
			b.WriteString("Bir temsilci görüşme geçmişinizle birlikte en kısa sürede size ulaşacak.\n")
		}
		if travel != nil && len(travel.CollectedFields) > 0 {
			b.WriteString("\nŞu ana kadar topladığım bilgiler:\n")
			b.WriteString(travel.FormatCollected(language))
			b.WriteString("\n")
		}
		b.WriteString("\nSize ulaşabilmemiz için bir telefon numarası veya e-posta paylaşabilir misiniz?")
		return b.String()
	}

	var b strings.Builder
	b.WriteString("I'm connecting you with a human agent. 🤝\n\n")
	if assessment.Urgency == "high" {
		b.WriteString("Your request has been flagged as a priority; an agent will be with you as soon as possible.\n")
	} else {
		b.WriteString("An agent will reach out shortly with the full context of this conversation.\n")
	}
	if travel != nil && len(travel.CollectedFields) > 0 {
		b.WriteString("\nHere is what I have gathered so far:\n")
		b.WriteString(travel.FormatCollected(language))
		b.WriteString("\n")
	}
	b.WriteString("\nCould you share a phone number or email so the agent can reach you?")
	return b.String()
}
