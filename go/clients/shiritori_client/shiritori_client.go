package shiritori_client

import (
	"fmt"
	"net/url"

	"github.com/mcdev12/shiritori/go/clients"
)

// ShiritoriClient is the typed request layer for the game REST API.
type ShiritoriClient struct {
	*clients.BaseClient
}

func NewShiritoriClient(baseURL string) (*ShiritoriClient, error) {
	base, err := clients.NewBaseClient(baseURL)
	if err != nil {
		return nil, err
	}

	client := &ShiritoriClient{BaseClient: base}
	client.SetHeader("Accept", "application/json")
	client.EnableCSRF(CsrfCookieName, CsrfHeader)

	return client, nil
}

// HasSession reports whether the server has issued a session cookie yet.
func (c *ShiritoriClient) HasSession() bool {
	return c.Cookie(SessionCookieName) != ""
}

func gamePath(format, gameID string) string {
	return fmt.Sprintf(format, url.PathEscape(gameID))
}
