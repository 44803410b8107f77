package checkout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Gateway is the payment provider seen from the coordinator: one call to
// open a payment session, one signature check on the callback. The provider
// stays opaque; nothing of its API leaks past this interface.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// RazorpayGateway talks to the Razorpay Orders API over HTTP basic auth.
type RazorpayGateway struct {
	HTTP      *http.Client
	BaseURL   string
	KeyID     string
	KeySecret string
}

func NewRazorpayGateway(baseURL, keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"amount":          amountMinor,
		"currency":        currency,
		"payment_capture": 1,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.KeyID, g.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway order create: %s", res.Status)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("gateway returned empty order id")
	}
	return out.ID, nil
}

// VerifySignature checks the HMAC-SHA256 of "<order_id>|<payment_id>"
// against the callback signature using the shared secret. Constant-time
// comparison; any mismatch or missing field fails.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(g.KeySecret, gatewayOrderID, paymentID, signature)
}

func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
