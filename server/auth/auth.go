package auth

import (
	"fmt"
	"time"

	"github.com/ares-safety/ares/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// SessionDuration bounds how long a signed-in session token stays valid.
const SessionDuration = 30 * 24 * time.Hour

// PasswordResetDuration bounds how long a reset token stays valid.
const PasswordResetDuration = 30 * time.Minute

type AresTokenClaims struct {
	FullName      string `json:"full_name"`
	PasswordReset bool   `json:"password_reset,omitempty"`
	jwt.StandardClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims AresTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*AresTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AresTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*AresTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to AresTokenClaims")
	}

	return tokenClaims, nil
}
