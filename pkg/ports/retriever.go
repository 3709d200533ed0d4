package ports

import "context"

// Retriever performs semantic search over policy documents. Used only by the
// Info handler to ground its answer in retrieved context.
type Retriever interface {
	Search(ctx context.Context, query string) (string, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, query string) (string, error)

// Search implements Retriever.
func (f RetrieverFunc) Search(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}
