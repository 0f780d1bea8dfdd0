package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "rzp_test_secret"

	t.Run("accepts valid signature", func(t *testing.T) {
		sig := sign("order_123", "pay_456", secret)
		err := VerifyPaymentSignature("order_123", "pay_456", sig, secret)
		assert.NoError(t, err)
	})

	t.Run("rejects tampered signature", func(t *testing.T) {
		sig := sign("order_123", "pay_456", secret)
		err := VerifyPaymentSignature("order_123", "pay_456", sig+"00", secret)
		assert.Error(t, err)
		assert.True(t, ierr.IsSignature(err))
	})

	t.Run("rejects signature over different order", func(t *testing.T) {
		sig := sign("order_999", "pay_456", secret)
		err := VerifyPaymentSignature("order_123", "pay_456", sig, secret)
		assert.True(t, ierr.IsSignature(err))
	})

	t.Run("rejects signature under wrong key", func(t *testing.T) {
		sig := sign("order_123", "pay_456", "some-other-secret")
		err := VerifyPaymentSignature("order_123", "pay_456", sig, secret)
		assert.True(t, ierr.IsSignature(err))
	})

	t.Run("rejects missing fields before computing", func(t *testing.T) {
		err := VerifyPaymentSignature("", "pay_456", "deadbeef", secret)
		assert.True(t, ierr.IsValidation(err))
	})
}
