package httpx

import (
	"context"
	"fmt"
	"net/http"
)

//go:generate moq -rm -out authenticator_mock.gen.go . authenticator:AuthenticatorMock
type authenticator interface {
	Authenticate(context.Context) error
	BearerToken() string
}

// AuthBearerRoundTripper keeps an Authorization header on outgoing
// requests, re-authenticating once on 401. Authenticators that hand out
// expiring tokens (the Cloud Run one does) return an empty BearerToken
// when the cached token is stale, which forces a refresh here.
type AuthBearerRoundTripper struct {
	next          http.RoundTripper
	authenticator authenticator
}

func NewAuthBearerRoundTripper(
	next http.RoundTripper,
	authenticator authenticator,
) AuthBearerRoundTripper {
	return AuthBearerRoundTripper{
		next:          next,
		authenticator: authenticator,
	}
}

// RoundTrip implements http.RoundTripper. The incoming request is cloned
// before the header is set; transports must not mutate the original.
func (rt AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.authenticator.BearerToken() == "" {
		if err := rt.authenticator.Authenticate(req.Context()); err != nil {
			return nil, fmt.Errorf("authenticator.Authenticate: %w", err)
		}
	}

	resp, err := rt.next.RoundTrip(rt.withAuthorizationHeader(req))
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if err = rt.authenticator.Authenticate(req.Context()); err != nil {
			return nil, fmt.Errorf("authenticator.Authenticate: %w", err)
		}

		return rt.next.RoundTrip(rt.withAuthorizationHeader(req)) //nolint:wrapcheck
	}

	return resp, nil
}

func (rt AuthBearerRoundTripper) withAuthorizationHeader(req *http.Request) *http.Request {
	authReq := req.Clone(req.Context())
	authReq.Header.Set("Authorization", "Bearer "+rt.authenticator.BearerToken())

	return authReq
}
