package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"taskpoints-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var cfg *config.JWTConfig

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	UID             string `json:"uid"`
	Email           string `json:"email"`
	CompanyID       string `json:"company_id,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Role            string `json:"role,omitempty"`
	IsSuperAdmin    bool   `json:"is_super_admin,omitempty"`
	ProfileComplete bool   `json:"profile_complete"`
	jwt.RegisteredClaims
}

// Initialize sets the JWT configuration used for signing and validation
func Initialize(c *config.JWTConfig) {
	cfg = c
}

// GenerateToken creates a token for an identity without a tenant profile yet.
// The client routes such sessions to the profile-completion flow.
func GenerateToken(uid, email string) (string, error) {
	return sign(UserClaims{
		UID:   uid,
		Email: email,
	})
}

// GenerateTokenWithProfile creates a token carrying the resolved tenant context
func GenerateTokenWithProfile(uid, email, companyID, companyName, role string, isSuperAdmin bool) (string, error) {
	return sign(UserClaims{
		UID:             uid,
		Email:           email,
		CompanyID:       companyID,
		CompanyName:     companyName,
		Role:            role,
		IsSuperAdmin:    isSuperAdmin,
		ProfileComplete: true,
	})
}

func sign(claims UserClaims) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.SigningKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
