/*
Package domain contains the core domain models for the Windrose conversation engine.

It defines the fundamental entities of the orchestration state machine, such as
the conversation Phase, the role-tagged Message history, the TravelContext slot
model and the persisted TurnState. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Phase: The top-level conversation state (Idle, Sharpening, Action, ...).
  - Message: A role-tagged entry in the conversation history (user, assistant, tool result).
  - TravelContext: The mutable bag of trip facts collected across turns.
  - TaskLedger: The append-only set of milestone tags reached during a conversation.
  - TurnState: The aggregate mutated by handlers and persisted between turns.
*/
package domain
