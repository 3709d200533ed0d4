package windrose_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/windrose-ai/windrose"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// ExampleOrchestrator_ProcessTurn wires the orchestrator with function
// adapters for the model and the tool dispatcher. Real deployments plug in
// an LLM provider client and an MCP tool server instead.
func ExampleOrchestrator_ProcessTurn() {
	// 1. The model: a canned stand-in that classifies the first contact and
	// then answers as the slot-filling assistant.
	model := ports.ModelFunc(func(_ context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
		if strings.Contains(req.System, "intent classifier") {
			return &ports.Completion{Content: `{"category": "planning"}`}, nil
		}
		return &ports.Completion{Content: `{"extracted": {"destination": "Paris", "motivation": "romantic"},
			"detected_language": "en", "response": "Paris it is! When would you like to depart?"}`}, nil
	})

	// 2. The dispatcher: executes tool calls the model requests during the
	// action phase. This example never reaches it.
	dispatcher := ports.DispatcherFunc(func(_ context.Context, call domain.ToolCall) (domain.ToolResult, error) {
		return domain.ToolResult{ID: call.ID, Content: "{}"}, nil
	})

	orc, err := windrose.New(model, dispatcher)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Drive one turn. State is kept per conversation ID; message history
	// is returned to the caller and passed back on the next turn.
	resp, err := orc.ProcessTurn(context.Background(), windrose.TurnRequest{
		ConversationID: "example",
		CustomerID:     "traveler-1",
		Message:        "I want a romantic getaway to Paris",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.AssistantText)
	fmt.Println(resp.State.CurrentPhase)
	// Output:
	// Paris it is! When would you like to depart?
	// sharpening
}
