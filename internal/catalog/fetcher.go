package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mbergo/guardrails/internal/httpclient"
	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/pkg/api"
)

// Fetcher pulls one provider's model listing and normalizes it into the
// canonical catalog shape. Failures travel inside the catalog's error field,
// never as Go errors: a broken provider still yields a well-formed empty
// catalog.
type Fetcher struct {
	adapters llm.AdapterSet
	creds    llm.Credentials
	client   httpclient.HTTPClient
}

// NewFetcher builds a fetcher over the given adapters and credentials. A nil
// client gets a default with a listing timeout.
func NewFetcher(adapters llm.AdapterSet, creds llm.Credentials, client httpclient.HTTPClient) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{adapters: adapters, creds: creds, client: client}
}

// Fetch lists p's models, filtered, sorted and defaulted by the provider's
// adapter. A missing API key short-circuits before any network traffic.
func (f *Fetcher) Fetch(ctx context.Context, p api.Provider) api.ModelCatalog {
	adapter, ok := f.adapters.For(p)
	if !ok {
		return api.ErrorCatalog(api.ErrInvalidProvider.Error())
	}

	key, ok := f.creds.Resolve(p)
	if !ok {
		return api.ErrorCatalog(fmt.Sprintf("%s API Key not configured.", p.DisplayName()))
	}

	req := adapter.ModelsRequest(key)

	var raw json.RawMessage
	if err := httpclient.SendRequest(ctx, f.client, req.Method, req.URL, req.Headers, nil, &raw); err != nil {
		var upstream *httpclient.UpstreamError
		if errors.As(err, &upstream) {
			return api.ErrorCatalog(fmt.Sprintf("Error fetching %s models: %d - %s", p.DisplayName(), upstream.StatusCode, upstream.UpstreamMessage()))
		}
		return api.ErrorCatalog(fmt.Sprintf("Error fetching %s models: %v", p.DisplayName(), err))
	}

	models, err := adapter.ParseModels(raw)
	if err != nil {
		return api.ErrorCatalog(fmt.Sprintf("Error fetching %s models: %v", p.DisplayName(), err))
	}
	if models == nil {
		models = []api.ModelDescriptor{}
	}

	return api.ModelCatalog{Models: models, DefaultModel: adapter.DefaultModel(models)}
}
