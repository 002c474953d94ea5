package auth

import (
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/eduboost-lms/analytics-service/internal/config"
	"github.com/eduboost-lms/analytics-service/internal/models"
)

// Identity is the caller as established from a verified session token.
type Identity struct {
	UID   string
	Name  string
	Email string
	Role  models.UserRole
}

// TokenVerifier validates a bearer token and resolves the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

type casdoorVerifier struct {
	client *casdoorsdk.Client
}

// NewCasdoorVerifier builds a verifier against the configured Casdoor
// deployment. Tokens are verified locally with the application certificate.
func NewCasdoorVerifier(cfg config.CasdoorConfig) TokenVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &casdoorVerifier{client: client}
}

func (v *casdoorVerifier) Verify(token string) (*Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session token: %w", err)
	}

	return &Identity{
		UID:   claims.User.Id,
		Name:  claims.User.Name,
		Email: claims.User.Email,
		Role:  mapRole(claims.User),
	}, nil
}

// mapRole derives the service role from the Casdoor user record. Admins are
// flagged directly; everyone else carries their role in the user tag.
func mapRole(user casdoorsdk.User) models.UserRole {
	if user.IsAdmin {
		return models.RoleAdmin
	}
	switch models.UserRole(strings.ToLower(user.Tag)) {
	case models.RoleEducator:
		return models.RoleEducator
	default:
		return models.RoleStudent
	}
}
