package provider

import (
	"context"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/go-resty/resty/v2"

	"pdl/value"
)

// restyHTTPGetter is the `api` block's narrow verb: an HTTP GET followed by
// JSON-response navigation via gabs, grounded on plugins/http/plugin.go's
// resty client pattern (SetResult/Execute).
type restyHTTPGetter struct {
	client *resty.Client
}

func newRestyHTTPGetter() HTTPGetter {
	return &restyHTTPGetter{client: resty.New()}
}

func (g *restyHTTPGetter) HTTPGet(ctx context.Context, url string) (value.Value, int, error) {
	resp, err := g.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("api GET %s failed: %w", url, err)
	}
	if resp.IsError() {
		return value.Value{}, resp.StatusCode(), fmt.Errorf("api GET %s returned status %s", url, resp.Status())
	}
	container, err := gabs.ParseJSON(resp.Body())
	if err != nil {
		return value.Value{}, resp.StatusCode(), fmt.Errorf("api response from %s is not valid JSON: %w", url, err)
	}
	return value.FromNative(container.Data()), resp.StatusCode(), nil
}
