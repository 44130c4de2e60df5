package probe

import (
	"context"

	"github.com/NamanBalaji/vidvault/internal/logger"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

// HTTPProbe considers the network connected when a HEAD request to URL
// gets any HTTP answer. Only transport failures count as disconnected.
type HTTPProbe struct {
	client *httpPkg.Client
	url    string
}

func NewHTTPProbe(client *httpPkg.Client, url string) *HTTPProbe {
	return &HTTPProbe{client: client, url: url}
}

func (p *HTTPProbe) IsConnected(ctx context.Context) (bool, error) {
	err := p.client.Head(ctx, p.url)
	if err == nil {
		return true, nil
	}

	if httpPkg.IsConnectivityError(err) {
		logger.Debugf("Network probe %s unreachable: %v", p.url, err)
		return false, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	// the host answered, even if with an error status
	return true, nil
}
