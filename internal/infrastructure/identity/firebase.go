package identity

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens, including revocation.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier. An empty credentialsFile falls back to
// application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	tok, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		switch {
		case auth.IsIDTokenExpired(err):
			return nil, ErrExpiredToken
		case auth.IsIDTokenRevoked(err), auth.IsUserDisabled(err):
			return nil, ErrRevokedToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Claims{
		UID:       tok.UID,
		Email:     stringClaim(tok.Claims, "email"),
		Name:      stringClaim(tok.Claims, "name"),
		Role:      stringClaim(tok.Claims, "role"),
		ExpiresAt: time.Unix(tok.Expires, 0),
	}, nil
}
