package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/scribeworks/compliance/pkg/common/logger"
	"golang.org/x/oauth2"
)

// OIDCAuthenticator guards the reporting endpoints. Audit exports carry
// actor identities, so they are not served anonymously when an issuer is
// configured.
type OIDCAuthenticator struct {
	config *oauth2.Config
	issuer string
}

func NewOIDCAuthenticator(issuer, clientID, clientSecret string) (*OIDCAuthenticator, error) {
	if issuer == "" || clientID == "" {
		return nil, fmt.Errorf("OIDC configuration incomplete")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/authorize", issuer),
			TokenURL: fmt.Sprintf("%s/token", issuer),
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	return &OIDCAuthenticator{config: config, issuer: issuer}, nil
}

// ValidateToken checks a bearer token and returns its claims.
//
// TODO: verify the JWT signature against the issuer's JWKS endpoint; today
// only non-emptiness and rough shape are checked.
func (a *OIDCAuthenticator) ValidateToken(ctx context.Context, token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("token is not a JWT")
	}

	logger.Log.WithField("issuer", a.issuer).Debug("Token accepted")

	return map[string]interface{}{
		"iss": a.issuer,
	}, nil
}
