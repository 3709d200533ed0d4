/*
Package windrose is a conversation orchestration engine for multi-turn travel
support assistants. It routes each user message through a supervisor, a
slot-filling sharpener, a search/booking action flow, an info answerer and a
human-handoff analyzer, threading all conversation state through an explicit,
persistable value.

# Concept

Windrose treats a support conversation as a phase machine: Idle, Sharpening,
ReadyForAction, Action, Info, Escalation, Completed. A small driver loop asks
the router which handler should run next, runs it, dispatches any tool calls
it requested, and stops when a handler needs user input. The engine holds no
global state; everything a turn needs travels in the TurnState, and only a
compact snapshot of it is persisted between turns. This Hexagonal Architecture
keeps the core decoupled from the language-model provider, the tool transport
and the storage backend.

# Key Features

  - Explicit state: every phase transition and collected trip fact is visible
    in the TurnState and its persisted Snapshot.
  - Deterministic sub-phase derivation: the search/present/confirm/book flow
    is re-derived from the history and the task ledger on every step.
  - Weighted escalation scoring with a deterministic keyword fallback.
  - Pluggable ports for the language model, tool dispatch, retrieval, state
    storage and distributed locking.

# Usage

Construct an Orchestrator with a language model and a tool dispatcher, then
feed it one user message per turn.

	package main

	import (
		"context"
		"log"

		"github.com/windrose-ai/windrose"
		"github.com/windrose-ai/windrose/pkg/adapters/redis"
	)

	func main() {
		store := redis.New("localhost:6379", "", 0)
		defer store.Close()

		orc, err := windrose.New(myModel, myDispatcher,
			windrose.WithStateStore(store),
		)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := orc.ProcessTurn(context.Background(), windrose.TurnRequest{
			ConversationID: "conv-123",
			CustomerID:     "cust-42",
			Message:        "I want to go to Paris next week",
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Println(resp.AssistantText)
	}

The language model and tool dispatcher are ports; any provider client can be
adapted to them. See pkg/ports for the interfaces and pkg/adapters for the
bundled implementations.
*/
package windrose
