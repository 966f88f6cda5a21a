package access

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/platform/id"
)

// Environment variable names for access grant configuration.
const (
	EnvGrantIssuer     = "CLIENTDOCS_ACCESS_GRANT_ISSUER"
	EnvGrantAudience   = "CLIENTDOCS_ACCESS_GRANT_AUDIENCE"
	EnvGrantBaseURL    = "CLIENTDOCS_ACCESS_GRANT_BASE_URL"
	EnvGrantPrivateKey = "CLIENTDOCS_ACCESS_GRANT_PRIVATE_KEY"
	EnvGrantPublicKey  = "CLIENTDOCS_ACCESS_GRANT_PUBLIC_KEY"
	EnvGrantTTL        = "CLIENTDOCS_ACCESS_GRANT_TTL"
)

// signerEnv holds raw env values before post-parse validation.
type signerEnv struct {
	Issuer     string        `env:"CLIENTDOCS_ACCESS_GRANT_ISSUER"   envDefault:"clientdocs-portal"`
	Audience   string        `env:"CLIENTDOCS_ACCESS_GRANT_AUDIENCE" envDefault:"clientdocs-clients"`
	BaseURL    string        `env:"CLIENTDOCS_ACCESS_GRANT_BASE_URL" envDefault:"http://localhost:8095/access"`
	PrivateKey string        `env:"CLIENTDOCS_ACCESS_GRANT_PRIVATE_KEY"`
	TTL        time.Duration `env:"CLIENTDOCS_ACCESS_GRANT_TTL"      envDefault:"1h"`
}

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"CLIENTDOCS_ACCESS_GRANT_ISSUER"   envDefault:"clientdocs-portal"`
	Audience  string `env:"CLIENTDOCS_ACCESS_GRANT_AUDIENCE" envDefault:"clientdocs-clients"`
	PublicKey string `env:"CLIENTDOCS_ACCESS_GRANT_PUBLIC_KEY"`
}

// SignerConfig defines how access grants are minted.
type SignerConfig struct {
	Issuer   string
	Audience string
	BaseURL  string
	Key      ed25519.PrivateKey
	TTL      time.Duration
}

// VerifierConfig defines how access grants are verified.
type VerifierConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// GrantClaims captures validated access grant claims.
type GrantClaims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time
	JWTID     string
	ClientID  string
	Email     string
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
	Email    string `json:"email"`
}

// IssuedGrant describes one minted access grant.
type IssuedGrant struct {
	URL       string
	Grant     string
	JWTID     string
	ExpiresAt time.Time
}

// LoadSignerConfigFromEnv reads grant signing configuration.
func LoadSignerConfigFromEnv() (SignerConfig, error) {
	var raw signerEnv
	if err := env.Parse(&raw); err != nil {
		return SignerConfig{}, fmt.Errorf("parse access grant env: %w", err)
	}
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if privateKey == "" {
		return SignerConfig{}, fmt.Errorf("CLIENTDOCS_ACCESS_GRANT_PRIVATE_KEY is required")
	}
	keyBytes, err := decodeBase64(privateKey)
	if err != nil {
		return SignerConfig{}, fmt.Errorf("decode access grant private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return SignerConfig{}, fmt.Errorf("access grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	if raw.TTL <= 0 {
		return SignerConfig{}, fmt.Errorf("access grant ttl must be positive")
	}

	return SignerConfig{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		BaseURL:  strings.TrimSpace(raw.BaseURL),
		Key:      ed25519.PrivateKey(keyBytes),
		TTL:      raw.TTL,
	}, nil
}

// LoadVerifierConfigFromEnv reads grant verification configuration.
func LoadVerifierConfigFromEnv(now func() time.Time) (VerifierConfig, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return VerifierConfig{}, fmt.Errorf("parse access grant env: %w", err)
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return VerifierConfig{}, fmt.Errorf("CLIENTDOCS_ACCESS_GRANT_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return VerifierConfig{}, fmt.Errorf("decode access grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return VerifierConfig{}, fmt.Errorf("access grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return VerifierConfig{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// IssueGrant mints one signed access grant URL for a client.
func IssueGrant(cfg SignerConfig, clientID, email string, now func() time.Time) (IssuedGrant, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PrivateKeySize {
		return IssuedGrant{}, errors.New("access grant signer is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return IssuedGrant{}, apperrors.New(apperrors.CodeGrantInvalid, "client id is required")
	}
	if now == nil {
		now = time.Now
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	jti, err := id.NewID()
	if err != nil {
		return IssuedGrant{}, fmt.Errorf("generate grant id: %w", err)
	}
	issuedAt := now().UTC()
	expiresAt := issuedAt.Add(ttl)

	grant, err := encodeGrant(cfg.Key, map[string]any{
		"iss":       cfg.Issuer,
		"aud":       cfg.Audience,
		"iat":       issuedAt.Unix(),
		"nbf":       issuedAt.Unix(),
		"exp":       expiresAt.Unix(),
		"jti":       jti,
		"client_id": clientID,
		"email":     strings.TrimSpace(email),
	})
	if err != nil {
		return IssuedGrant{}, err
	}

	grantURL, err := buildAccessURL(cfg.BaseURL, grant)
	if err != nil {
		return IssuedGrant{}, fmt.Errorf("build access url: %w", err)
	}
	return IssuedGrant{URL: grantURL, Grant: grant, JWTID: jti, ExpiresAt: expiresAt}, nil
}

// ValidateGrant verifies an access grant token and its claims.
func ValidateGrant(grant string, cfg VerifierConfig) (GrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return GrantClaims{}, errors.New("access grant verifier is not configured")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return GrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"access grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"access grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}

	if parsed.ID == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantExpired, "access grant is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant not active yet")
		}
	}

	if strings.TrimSpace(parsed.ClientID) == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant client id is required")
	}

	claims := GrantClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		ClientID:  parsed.ClientID,
		Email:     parsed.Email,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

func encodeGrant(key ed25519.PrivateKey, payload map[string]any) (string, error) {
	headerJSON, err := json.Marshal(map[string]string{
		"alg": "EdDSA",
		"typ": "JWT",
	})
	if err != nil {
		return "", fmt.Errorf("encode grant header: %w", err)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode grant payload: %w", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(key, []byte(signingInput))
	encodedSig := base64.RawURLEncoding.EncodeToString(signature)
	return signingInput + "." + encodedSig, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeGrantInvalid, "access grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeGrantInvalid, "access grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeGrantInvalid, "access grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func buildAccessURL(base string, grant string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("grant", grant)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
