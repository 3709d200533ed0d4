/*
Package ports defines the interfaces between the Windrose core and its
collaborators, following Hexagonal Architecture principles.

The core never talks to a language model, a tool backend, a retrieval index or
a datastore directly; it emits requests through these ports and the host wires
in concrete adapters (see pkg/adapters).

# Key Ports

  - LanguageModel: a single Complete call, optionally tool-bound or JSON-strict.
  - ToolDispatcher: executes a side-effect and returns a structured result.
  - Retriever: policy/document search used by the Info handler.
  - StateStore: persists conversation snapshots between turns.
  - DistributedLocker: serializes turns per conversation across replicas.
*/
package ports
