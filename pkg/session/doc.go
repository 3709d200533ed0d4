/*
Package session coordinates concurrent access to conversation state.

The orchestrator requires at-most-one in-flight turn per conversation ID.
Manager enforces this with a reference-counted in-process mutex per ID, and
optionally a distributed lock when multiple replicas share the state store.
*/
package session
