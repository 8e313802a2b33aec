package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator is required for destructive maintenance endpoints.
const RoleOperator = "operator"

// Claims identifies an operator and the roles they act under.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 operator tokens.
type JWTManager struct {
	secret   string
	issuer   string
	audience string
	expiry   time.Duration
}

func NewJWTManager(secret, issuer, audience string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
	}
}

// ValidateConfig rejects settings that would make tokens forgeable or unusable.
func (j *JWTManager) ValidateConfig() error {
	if len(j.secret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if j.issuer == "" || j.audience == "" {
		return errors.New("jwt issuer and audience are required")
	}
	if j.expiry <= 0 {
		return errors.New("jwt expiry must be positive")
	}
	return nil
}

// GenerateToken signs a token for operator carrying roles.
func (j *JWTManager) GenerateToken(operator string, roles []string) (string, error) {
	if operator == "" {
		return "", errors.New("operator is required")
	}
	now := time.Now()
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Audience:  []string{j.audience},
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

// ValidateToken parses tokenString and checks signature, expiry, issuer and audience.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	}, jwt.WithIssuer(j.issuer), jwt.WithAudience(j.audience))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// HasRole checks if the claims carry any of the required roles.
func (c *Claims) HasRole(requiredRoles ...string) bool {
	for _, required := range requiredRoles {
		for _, role := range c.Roles {
			if role == required {
				return true
			}
		}
	}
	return false
}
