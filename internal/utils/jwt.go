package utils // package utils provides helper functions for token creation and password hashing

import (
    "errors" // sentinel error for failed token verification
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned for every token verification failure: bad
// signature, malformed token, wrong signing method or expired claims.  The
// caller must not learn which of these happened, so no more specific error
// ever leaves this package.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent back to clients on
// register/login and presented in the Authorization header afterwards.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenClaims is the identity a verified token asserts.  This is the only
// source of truth for ownership checks downstream; identifiers arriving in
// request bodies or paths are never trusted instead.
type TokenClaims struct {
    UserID   uint64 // subject of the token
    Username string // username at issue time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the username and a TTL.  It returns an
// AccessToken structure containing the signed token and its expiration
// time.  The JWT includes the subject (sub), the username, expiration
// (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, username string, ttl time.Duration) (AccessToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub":      userID,
        "username": username,
        "exp":      exp.Unix(),
        "iat":      time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies a raw token string against the current signing
// secret and returns the embedded identity claims.  The token is accepted
// only when the signature is valid under the secret, the token is well
// formed and the expiry lies in the future; jwt.Parse checks exp as part
// of claim validation.  Every failure collapses into ErrInvalidToken.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC; an attacker must not
        // be able to pick the verification algorithm.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return TokenClaims{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return TokenClaims{}, ErrInvalidToken
    }
    out := TokenClaims{}
    switch sub := claims["sub"].(type) {
    case float64:
        // JSON numbers decode as float64; user IDs fit well below the point
        // where the conversion loses precision.
        out.UserID = uint64(sub)
    default:
        return TokenClaims{}, ErrInvalidToken
    }
    if name, ok := claims["username"].(string); ok {
        out.Username = name
    }
    if out.UserID == 0 {
        return TokenClaims{}, ErrInvalidToken
    }
    return out, nil
}
