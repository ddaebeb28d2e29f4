package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignConfirmation computes the hex HMAC-SHA256 signature over
// "<intent_id>|<payment_id>" using the gateway shared secret.
func SignConfirmation(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyConfirmationSignature checks the presented signature in constant time.
func VerifyConfirmationSignature(secret string, conf Confirmation) error {
	if strings.TrimSpace(conf.IntentID) == "" || strings.TrimSpace(conf.PaymentID) == "" {
		return fmt.Errorf("%w: intent id and payment id are required", ErrInvalidInput)
	}
	presented := strings.TrimSpace(strings.ToLower(conf.Signature))
	if presented == "" {
		return fmt.Errorf("%w: signature is required", ErrInvalidInput)
	}

	expected := SignConfirmation(secret, conf.IntentID, conf.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(presented)) {
		return ErrSignatureMismatch
	}
	return nil
}
