package client

import (
	"context"

	"github.com/dmitrijs2005/clouddemo/internal/common"
	"github.com/supabase-community/postgrest-go"
)

const tablesSchema = "public"

// TableAPI opens PostgREST clients against the backend's /rest/v1 surface.
type TableAPI struct {
	endpoint Endpoint
}

func NewTableAPI(endpoint Endpoint) *TableAPI {
	return &TableAPI{endpoint: endpoint}
}

// As returns a client bound to ctx that authenticates as accessToken. An
// empty token falls back to the anon key.
func (t *TableAPI) As(ctx context.Context, accessToken string) (*postgrest.Client, func()) {
	if accessToken == "" {
		accessToken = t.endpoint.AnonKey
	}

	tc := postgrest.NewClient(t.endpoint.url("/rest/v1"), tablesSchema, map[string]string{
		common.ClientInfoHeaderName: common.ClientInfo,
	})
	if tc.ClientError != nil {
		return tc, func() {}
	}
	tc.SetApiKey(t.endpoint.AnonKey).SetAuthToken(accessToken)

	rt, cancel := t.endpoint.bind(ctx)
	tc.Transport.Parent = rt
	return tc, cancel
}
