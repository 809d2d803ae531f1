package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer checks the HMAC-SHA256 signatures the gateway attaches to redirect
// callbacks and webhooks.
type Signer struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewSigner(keySecret, webhookSecret string) *Signer {
	return &Signer{keySecret: []byte(keySecret), webhookSecret: []byte(webhookSecret)}
}

// PaymentSignature is hex(HMAC(keySecret, orderID + "|" + paymentID)).
func (s *Signer) PaymentSignature(gatewayOrderID, paymentID string) string {
	return sign(s.keySecret, []byte(gatewayOrderID+"|"+paymentID))
}

func (s *Signer) VerifyPayment(gatewayOrderID, paymentID, signature string) bool {
	return equal(s.PaymentSignature(gatewayOrderID, paymentID), signature)
}

func (s *Signer) WebhookSignature(body []byte) string {
	return sign(s.webhookSecret, body)
}

func (s *Signer) VerifyWebhook(body []byte, signature string) bool {
	if len(s.webhookSecret) == 0 {
		return false
	}
	return equal(s.WebhookSignature(body), signature)
}

func sign(secret, msg []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

func equal(expected, got string) bool {
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(got))
}
