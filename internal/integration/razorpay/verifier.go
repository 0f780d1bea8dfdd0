package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	ierr "github.com/netbill/netbill/internal/errors"
)

// VerifyPaymentSignature checks the payment proof returned by the client
// after checkout. Razorpay signs the string "<orderID>|<paymentID>" with
// HMAC SHA256 under the key secret; the signature is hex encoded. This is
// the sole gate before any subscription or connection mutation: on mismatch
// the caller must write nothing.
func VerifyPaymentSignature(orderID, paymentID, signature, secretKey string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ierr.NewError("missing payment proof fields").
			WithHint("Order ID, payment ID and signature are required").
			Mark(ierr.ErrValidation)
	}

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ierr.NewError("payment signature mismatch").
			WithHint("Invalid payment signature").
			WithReportableDetails(map[string]any{
				"order_id":   orderID,
				"payment_id": paymentID,
			}).
			Mark(ierr.ErrSignature)
	}

	return nil
}
