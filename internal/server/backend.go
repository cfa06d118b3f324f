package server

import (
	"context"

	"github.com/goliatone/go-gridform/pkg/apiclient"
	"github.com/goliatone/go-gridform/pkg/queryparam"
)

// Backend is the REST surface the admin calls. *apiclient.Client satisfies it.
type Backend interface {
	List(ctx context.Context, resource string, state queryparam.TableQueryState) (apiclient.Page, error)
	Get(ctx context.Context, resource, id string) (apiclient.Record, error)
	Create(ctx context.Context, resource string, payload map[string]any) (apiclient.Record, error)
	Update(ctx context.Context, resource, id string, version int64, payload map[string]any) (apiclient.Record, error)
	Delete(ctx context.Context, resource string, ids ...string) error
	Reveal(ctx context.Context, resource, id, field string) (string, error)
}

var _ Backend = (*apiclient.Client)(nil)
