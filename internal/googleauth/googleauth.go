// Package googleauth проверяет Google ID-токены через OIDC-дискавери
// (https://accounts.google.com) и отдаёт минимальный набор клеймов,
// нужный для входа/регистрации через Google.
package googleauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const issuerGoogle = "https://accounts.google.com"

// Claims — проверенные клеймы Google ID-токена.
type Claims struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// Verifier проверяет подпись, издателя, аудиторию и срок действия ID-токена.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// New создаёт Verifier: выполняет OIDC-дискавери Google и настраивает
// проверку аудитории по clientID.
func New(ctx context.Context, clientID string) (*Verifier, error) {
	const op = "googleauth.New"

	if clientID == "" {
		return nil, fmt.Errorf("%s: empty client id", op)
	}

	provider, err := oidc.NewProvider(ctx, issuerGoogle)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify валидирует ID-токен и возвращает клеймы.
// Любая причина отказа (подпись, срок, aud, невалидный email) возвращается
// как ошибка — вызывающая сторона не различает их.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	const op = "googleauth.Verify"

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("missing required claims"))
	}

	if !claims.EmailVerified {
		return nil, fmt.Errorf("%s: %w", op, errors.New("email not verified"))
	}

	return &Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	}, nil
}
