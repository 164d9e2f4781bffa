package domain

import "time"

// Mobile OAuth defaults.
const (
	OAuthSettingsKey        = "Mobile OAuth Settings"
	OAuthAppName            = "Mobile App"
	OAuthDefaultRedirectURI = "app.trust://oauth2redirect"
	OAuthDefaultScope       = "all openid"
	OAuthGrantAuthorization = "Authorization Code"
	OAuthResponseTypeCode   = "Code"
)

// OAuthSettings is the singleton record holding the mobile client credentials.
type OAuthSettings struct {
	Name         string `dynamodbav:"name"`
	ClientID     string `dynamodbav:"client_id"`
	ClientSecret string `dynamodbav:"client_secret"`
	Scope        string `dynamodbav:"scope"`
	RedirectURI  string `dynamodbav:"redirect_uri"`
}

// OAuthClient is a registered OAuth client. Only the secret's hash is kept here.
type OAuthClient struct {
	ClientID           string    `dynamodbav:"client_id"`
	ClientSecretHash   string    `dynamodbav:"client_secret_hash"`
	AppName            string    `dynamodbav:"app_name"`
	ClientName         string    `dynamodbav:"client_name"`
	RedirectURIs       string    `dynamodbav:"redirect_uris"`
	DefaultRedirectURI string    `dynamodbav:"default_redirect_uri"`
	Scopes             string    `dynamodbav:"scopes"`
	GrantType          string    `dynamodbav:"grant_type"`
	ResponseType       string    `dynamodbav:"response_type"`
	SkipAuthorization  bool      `dynamodbav:"skip_authorization"`
	CreatedAt          time.Time `dynamodbav:"created_at"`
}

// OAuthConfig is what mobile clients receive from the config endpoint.
type OAuthConfig struct {
	ClientID    string `json:"client_id"`
	Scope       string `json:"scope"`
	RedirectURI string `json:"redirect_uri"`
}

// BootstrapResult reports the outcome of the install-time OAuth setup.
type BootstrapResult struct {
	OK       bool   `json:"ok"`
	Site     string `json:"site"`
	ClientID string `json:"client_id,omitempty"`
	Message  string `json:"message,omitempty"`
}
