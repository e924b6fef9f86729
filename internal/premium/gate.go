// Package premium gates premium features and grants access from checkout webhooks.
package premium

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// NewGate creates a Gate. Emails at emailDomain are always allowed, and devMode allows everyone.
// secret signs checkout webhooks.
func NewGate(store Store, emailDomain string, devMode bool, secret string) *Gate {
	return &Gate{
		store:       store,
		emailDomain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(emailDomain), "@")),
		devMode:     devMode,
		secret:      secret,
	}
}

// Allowed reports whether the user may use premium features.
func (g *Gate) Allowed(userID, email string) (bool, error) {
	if g.devMode {
		return true, nil
	}
	if g.emailDomain != "" && strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+g.emailDomain) {
		return true, nil
	}
	premium, err := g.store.IsPremium(userID)
	if err != nil {
		return false, fmt.Errorf("failed to check premium access: %w", err)
	}
	return premium, nil
}

// VerifySignature checks that signature is the hex HMAC-SHA256 of body under secret.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the signature VerifySignature accepts for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleCheckoutWebhook verifies and applies a checkout webhook. It returns the user that was
// granted premium, or "" when the event type does not grant anything.
func (g *Gate) HandleCheckoutWebhook(body []byte, signature string) (string, error) {
	if !VerifySignature(g.secret, body, signature) {
		return "", ErrInvalidSignature
	}

	var event CheckoutEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return "", fmt.Errorf("failed to unmarshal checkout event: %w", err)
	}
	if event.Type != EventCheckoutCompleted {
		log.Debug("Ignoring checkout event", "id", event.ID, "type", event.Type)
		return "", nil
	}

	userID := strings.TrimSpace(event.Data.Object.Metadata["user_id"])
	if userID == "" {
		return "", ErrMissingUserID
	}
	if err := g.store.GrantPremium(userID); err != nil {
		return "", fmt.Errorf("failed to grant premium: %w", err)
	}
	log.Info("Checkout completed", "id", event.ID, "user_id", userID)
	return userID, nil
}
