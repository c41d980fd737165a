package services

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// EntraClaims are the ID token claims used to find or create a user.
type EntraClaims struct {
	OID               string `json:"oid"`
	TenantID          string `json:"tid"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// ObjectID returns the stable object id, falling back to sub.
func (c *EntraClaims) ObjectID() string {
	if c.OID != "" {
		return c.OID
	}
	return c.RegisteredClaims.Subject
}

// Mail returns the best available email address.
func (c *EntraClaims) Mail() string {
	if c.Email != "" {
		return c.Email
	}
	return c.PreferredUsername
}

const entraAuthority = "https://login.microsoftonline.com/"

// EntraVerifier validates Microsoft Entra ID tokens against the tenant's
// signing keys, which are cached for a day and refetched on an unknown kid.
// For the multi-tenant authorities the issuer is derived from the token's
// own tid claim, because Entra never issues tokens as "common".
type EntraVerifier struct {
	clientID   string
	issuer     string // empty for multi-tenant authorities
	jwksURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

func NewEntraVerifier(tenantID, clientID string) *EntraVerifier {
	var issuer string
	switch strings.ToLower(tenantID) {
	case "", "common", "organizations":
		tenantID = "common"
	default:
		issuer = entraIssuer(tenantID)
	}
	return &EntraVerifier{
		clientID:   clientID,
		issuer:     issuer,
		jwksURL:    entraAuthority + tenantID + "/discovery/v2.0/keys",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       make(map[string]*rsa.PublicKey),
	}
}

func (v *EntraVerifier) Verify(idToken string) (*EntraClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &EntraClaims{}
	if _, err := jwt.ParseWithClaims(idToken, claims, v.keyFunc, opts...); err != nil {
		return nil, fmt.Errorf("verify entra token: %w", err)
	}
	if v.issuer == "" {
		if claims.TenantID == "" || claims.Issuer != entraIssuer(claims.TenantID) {
			return nil, fmt.Errorf("verify entra token: %w", jwt.ErrTokenInvalidIssuer)
		}
	}
	if claims.ObjectID() == "" {
		return nil, errors.New("verify entra token: missing subject")
	}
	return claims, nil
}

func entraIssuer(tenantID string) string {
	return entraAuthority + tenantID + "/v2.0"
}

func (v *EntraVerifier) keyFunc(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no kid")
	}
	return v.publicKey(kid)
}

func (v *EntraVerifier) publicKey(kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Now().Before(v.expiresAt)
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := v.fetchKeys(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("public key with kid %s not found", kid)
}

func (v *EntraVerifier) fetchKeys() error {
	resp, err := v.httpClient.Get(v.jwksURL)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.expiresAt = time.Now().Add(24 * time.Hour)
	v.mu.Unlock()
	return nil
}

func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
