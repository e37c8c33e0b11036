package cloudrun

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Authenticator mints OAuth2 access tokens for the Cloud Run Admin API from
// Application Default Credentials: a service-account key file when
// GOOGLE_APPLICATION_CREDENTIALS is set, the metadata server on GCE.
type Authenticator struct {
	mu     sync.Mutex
	source oauth2.TokenSource
	token  *oauth2.Token
}

func NewAuthenticator() *Authenticator {
	return &Authenticator{}
}

func (a *Authenticator) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.source == nil {
		source, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return fmt.Errorf("google.DefaultTokenSource: %w", err)
		}

		a.source = source
	}

	token, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("source.Token: %w", err)
	}

	a.token = token

	return nil
}

// BearerToken returns the cached access token. Expired tokens read as empty
// so the transport re-authenticates before the next request.
func (a *Authenticator) BearerToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil || !a.token.Valid() {
		return ""
	}

	return a.token.AccessToken
}
