// Package runtime contains the conversation engine: the per-turn router, the
// phase handlers (sharpener, action, info, escalation) and the driver loop
// that threads a TurnState through them. All state is carried explicitly;
// the engine itself holds only injected collaborators.
package runtime
