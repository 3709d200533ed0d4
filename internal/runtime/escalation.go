package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/windrose-ai/windrose/internal/logging"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// EscalationThreshold is the score (0-100) at or above which a conversation
// is handed off to a human.
const EscalationThreshold = 50

// Signal weights. All weights fire independently and only ever add.
const (
	weightExplicitRequest   = 50
	weightHighFrustration   = 30 // level 4-5
	weightMediumFrustration = 15 // level 3
	weightRepeatedRequests  = 25 // 3+ similar requests
	weightComplexIssue      = 20
	weightPaymentDispute    = 15
	weightLongConversation  = 10 // 10+ user messages
	weightFailedActions     = 15 // 2+ failed operations
)

// Assessment is the analyzer's verdict on a conversation.
type Assessment struct {
	ShouldEscalate    bool           `json:"should_escalate"`
	Score             int            `json:"score"`
	Signals           map[string]any `json:"signals"`
	Urgency           string         `json:"urgency"` // low | medium | high
	Reason            string         `json:"reason"`
	RecommendedAction string         `json:"recommended_action"`
}

// sentimentAnalysis is the JSON contract for the model's read of the conversation.
type sentimentAnalysis struct {
	ExplicitHumanRequest bool   `json:"explicit_human_request"`
	FrustrationLevel     int    `json:"frustration_level"`
	IssueComplexity      int    `json:"issue_complexity"`
	UserSentiment        string `json:"user_sentiment"`
	InvolvesPayment      bool   `json:"involves_payment"`
	RecommendedAction    string `json:"recommended_action"`
}

// Analyzer scores a conversation for human-handoff need from weighted signals.
type Analyzer struct {
	llm    ports.LanguageModel
	logger *slog.Logger
}

// NewAnalyzer creates an escalation analyzer. The model is optional: without
// one the deterministic keyword heuristic is used for every analysis.
func NewAnalyzer(llm ports.LanguageModel, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{llm: llm, logger: logger}
}

// Analyze computes the weighted escalation score for the conversation.
func (a *Analyzer) Analyze(ctx context.Context, messages []domain.Message, travel *domain.TravelContext, failedActions []string) Assessment {
	if len(messages) == 0 {
		return Assessment{
			Signals:           map[string]any{},
			Urgency:           "low",
			Reason:            "No messages to analyze",
			RecommendedAction: "continue",
		}
	}

	userMessageCount := domain.CountUserMessages(messages)
	recent := domain.Tail(messages, 6)

	analysis := a.modelAnalysis(ctx, recent)

	score := 0
	signals := map[string]any{}

	if analysis.ExplicitHumanRequest {
		score += weightExplicitRequest
		signals["explicit_request"] = true
	}

	switch {
	case analysis.FrustrationLevel >= 4:
		score += weightHighFrustration
		signals["high_frustration"] = true
	case analysis.FrustrationLevel == 3:
		score += weightMediumFrustration
		signals["medium_frustration"] = true
	}

	if repeated := repeatedRequestCount(messages); repeated >= 3 {
		score += weightRepeatedRequests
		signals["repeated_requests"] = repeated
	}

	if analysis.IssueComplexity >= 4 {
		score += weightComplexIssue
		signals["complex_issue"] = true
	}

	if analysis.InvolvesPayment && (analysis.UserSentiment == "negative" || analysis.UserSentiment == "very_negative") {
		score += weightPaymentDispute
		signals["payment_dispute"] = true
	}

	if userMessageCount >= 10 {
		score += weightLongConversation
		signals["long_conversation"] = userMessageCount
	}

	if len(failedActions) >= 2 {
		score += weightFailedActions
		signals["failed_actions"] = failedActions
	}

	shouldEscalate := score >= EscalationThreshold

	urgency := "low"
	switch {
	case score >= 70:
		urgency = "high"
	case score >= EscalationThreshold:
		urgency = "medium"
	}

	assessment := Assessment{
		ShouldEscalate:    shouldEscalate,
		Score:             score,
		Signals:           signals,
		Urgency:           urgency,
		Reason:            buildEscalationReason(signals, analysis, shouldEscalate),
		RecommendedAction: analysis.RecommendedAction,
	}
	if assessment.RecommendedAction == "" {
		assessment.RecommendedAction = "continue"
	}

	a.logger.Info("escalation analysis",
		"score", score,
		"threshold", EscalationThreshold,
		"escalate", shouldEscalate,
		"urgency", urgency,
	)

	return assessment
}

// modelAnalysis asks the language model to read the conversation; on any
// failure it falls back to the deterministic keyword heuristic.
func (a *Analyzer) modelAnalysis(ctx context.Context, recent []domain.Message) sentimentAnalysis {
	if a.llm == nil {
		return fallbackAnalysis(recent)
	}

	resp, err := a.llm.Complete(ctx, ports.CompletionRequest{
		System:     escalationAnalysisPrompt(recent),
		StrictJSON: true,
	})
	if err != nil {
		a.logger.Warn("escalation model analysis failed, using keyword fallback", "err", err)
		return fallbackAnalysis(recent)
	}

	var analysis sentimentAnalysis
	if err := json.Unmarshal([]byte(resp.Content), &analysis); err != nil {
		a.logger.Warn("escalation analysis was not valid JSON, using keyword fallback", "err", err)
		return fallbackAnalysis(recent)
	}
	return analysis
}

func escalationAnalysisPrompt(recent []domain.Message) string {
	var b strings.Builder
	b.WriteString("Analyze this customer service conversation for escalation signals.\n\nCONVERSATION:\n")
	for _, msg := range recent {
		switch msg.Role {
		case domain.RoleUser:
			fmt.Fprintf(&b, "USER: %s\n", msg.Content)
		case domain.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(&b, "ASSISTANT: %s\n", truncate(msg.Content, 200))
			}
		}
	}
	b.WriteString(`
Analyze and return JSON:
{
    "explicit_human_request": true if user explicitly asks for a human/manager/representative,
    "frustration_level": 1-5 (1=calm, 5=very angry),
    "issue_complexity": 1-5 (1=simple, 5=very complex),
    "user_sentiment": "positive" | "neutral" | "negative" | "very_negative",
    "involves_payment": true if money/refund/payment is discussed,
    "recommended_action": "continue" | "escalate" | "urgent_escalate"
}

Be objective. Consider tone and word choice, repeated complaints, unresolved
issues, payment/refund disputes and explicit requests for human help.
`)
	return b.String()
}

var (
	fallbackExplicitKeywords = []string{
		"human", "agent", "representative", "manager",
		"insan", "yetkili", "müdür", "şikayet",
	}
	fallbackFrustrationKeywords = []string{
		"terrible", "awful", "worst", "angry", "furious", "unacceptable",
		"berbat", "rezalet", "kabul edilemez", "sinir", "kızgın",
	}
	fallbackPaymentKeywords = []string{
		"refund", "money", "payment", "charge",
		"iade", "para", "ödeme", "ücret",
	}
)

// fallbackAnalysis is the deterministic heuristic used when the model call
// fails: keyword matching over the latest user message.
func fallbackAnalysis(messages []domain.Message) sentimentAnalysis {
	last, ok := domain.LastUserMessage(messages)
	if !ok {
		return sentimentAnalysis{FrustrationLevel: 1, IssueComplexity: 1, UserSentiment: "neutral", RecommendedAction: "continue"}
	}
	content := strings.ToLower(last.Content)

	frustrated := containsAny(content, fallbackFrustrationKeywords)
	frustrationLevel := 2
	sentiment := "neutral"
	if frustrated {
		frustrationLevel = 4
		sentiment = "negative"
	}

	return sentimentAnalysis{
		ExplicitHumanRequest: containsAny(content, fallbackExplicitKeywords),
		FrustrationLevel:     frustrationLevel,
		IssueComplexity:      2,
		UserSentiment:        sentiment,
		InvolvesPayment:      containsAny(content, fallbackPaymentKeywords),
		RecommendedAction:    "continue",
	}
}

// repeatedRequestStopWords are stripped before comparing messages for overlap.
var repeatedRequestStopWords = map[string]struct{}{
	"i": {}, "the": {}, "a": {}, "an": {}, "to": {}, "my": {},
	"please": {}, "said": {}, "want": {}, "need": {}, "can": {}, "you": {},
}

// repeatedRequestCount compares the latest user message against each earlier
// user message by non-stopword token overlap and counts those with
// |intersection| / min(|A|,|B|) above 0.4.
func repeatedRequestCount(messages []domain.Message) int {
	var userMessages []string
	for _, msg := range messages {
		if msg.Role == domain.RoleUser {
			userMessages = append(userMessages, strings.ToLower(msg.Content))
		}
	}
	if len(userMessages) < 2 {
		return 0
	}

	last := tokenSet(userMessages[len(userMessages)-1])
	count := 0
	for _, prev := range userMessages[:len(userMessages)-1] {
		prevSet := tokenSet(prev)
		if len(last) == 0 || len(prevSet) == 0 {
			continue
		}
		common := 0
		for word := range last {
			if _, ok := prevSet[word]; ok {
				common++
			}
		}
		ratio := float64(common) / float64(min(len(last), len(prevSet)))
		if ratio > 0.4 {
			count++
		}
	}
	return count
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(s) {
		if _, stop := repeatedRequestStopWords[word]; !stop {
			set[word] = struct{}{}
		}
	}
	return set
}

var quickEscalationPhrases = []string{
	// English
	"speak to human", "talk to human", "human agent", "real person",
	"speak to someone", "talk to someone", "representative", "manager",
	"supervisor", "escalate", "complaint department",
	// Turkish
	"insanla görüşmek", "gerçek biri", "yetkili", "müdür",
	"şikayet", "üst makam", "temsilci",
}

// QuickEscalationCheck matches a single message against the fixed bilingual
// explicit-human-request phrase list, independent of the scorer. It is an
// available short-circuit capability; the default routing path does not call
// it.
func QuickEscalationCheck(message string) bool {
	if message == "" {
		return false
	}
	return containsAny(strings.ToLower(message), quickEscalationPhrases)
}

func buildEscalationReason(signals map[string]any, analysis sentimentAnalysis, shouldEscalate bool) string {
	if !shouldEscalate {
		return "No escalation needed - conversation proceeding normally"
	}

	var reasons []string
	if _, ok := signals["explicit_request"]; ok {
		reasons = append(reasons, "User explicitly requested human assistance")
	}
	if _, ok := signals["high_frustration"]; ok {
		reasons = append(reasons, fmt.Sprintf("High frustration level detected (level %d)", analysis.FrustrationLevel))
	}
	if n, ok := signals["repeated_requests"]; ok {
		reasons = append(reasons, fmt.Sprintf("Same request repeated %v times", n))
	}
	if _, ok := signals["payment_dispute"]; ok {
		reasons = append(reasons, "Payment/refund dispute with negative sentiment")
	}
	if _, ok := signals["complex_issue"]; ok {
		reasons = append(reasons, "Complex issue requiring human judgment")
	}
	if n, ok := signals["long_conversation"]; ok {
		reasons = append(reasons, fmt.Sprintf("Extended conversation (%v messages) without resolution", n))
	}
	if _, ok := signals["failed_actions"]; ok {
		reasons = append(reasons, "Multiple failed actions")
	}

	if len(reasons) == 0 {
		return "Multiple escalation signals detected"
	}
	return strings.Join(reasons, "; ")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// truncate caps s at n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
