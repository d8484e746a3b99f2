package weather

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConf holds the OAuth2 client credentials used to call the forecast
// provider. An empty ClientID disables authentication.
type AuthConf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

func (c AuthConf) enabled() bool { return c.ClientID != "" }

func (c AuthConf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}

// httpClient wraps base with a token source that fetches and caches access
// tokens, refreshing them on expiry.
func (c AuthConf) httpClient(base *http.Client) *http.Client {
	if !c.enabled() {
		return base
	}
	cc := c.toOauth2Config()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := cc.Client(ctx)
	client.Timeout = base.Timeout
	return client
}
