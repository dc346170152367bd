package auth

import (
	"context"
	"errors"
	"fmt"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// FirebaseTokenClient is the subset of the Firebase Admin auth client used here.
type FirebaseTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens issued to the admin UI. Roles
// come from the "role" custom claim; a boolean "admin" claim grants RoleAdmin.
type FirebaseVerifier struct {
	client FirebaseTokenClient
}

var _ TokenVerifier = (*FirebaseVerifier)(nil)

func NewFirebaseVerifier(client FirebaseTokenClient) (*FirebaseVerifier, error) {
	if client == nil {
		return nil, errors.New("auth: firebase auth client is required")
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		switch {
		case firebaseauth.IsIDTokenExpired(err):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case firebaseauth.IsIDTokenInvalid(err):
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
		return nil, err
	}
	roles := rolesFromClaims(token.Claims, defaultRoleClaim)
	if admin, ok := token.Claims[RoleAdmin].(bool); ok && admin {
		roles = append(roles, RoleAdmin)
	}
	return &Identity{
		Subject: token.UID,
		Email:   claimAsString(token.Claims, "email"),
		Roles:   roles,
		Source:  "firebase",
	}, nil
}
