package signature

import (
	"strings"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`)
	secret := "whsec-test"

	valid := SignWebhookBody(payload, secret)

	if !VerifyWebhookSignature(payload, valid, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, strings.ToUpper(valid), secret) {
		t.Fatalf("expected uppercase hex signature to validate")
	}
	if VerifyWebhookSignature(payload, valid, "other-secret") {
		t.Fatalf("expected signature under wrong secret to fail")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected bogus signature to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex-at-all", secret) {
		t.Fatalf("expected malformed hex to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty header to fail")
	}
	if VerifyWebhookSignature(payload, valid, "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyWebhookSignature_ReserializedPayloadFails(t *testing.T) {
	// Same logical JSON, different key order. A signature over one byte
	// sequence must not verify against the other.
	a := []byte(`{"event":"payment.captured","created_at":1700000000}`)
	b := []byte(`{"created_at":1700000000,"event":"payment.captured"}`)
	secret := "whsec-test"

	sigA := SignWebhookBody(a, secret)

	if !VerifyWebhookSignature(a, sigA, secret) {
		t.Fatalf("expected signature over original bytes to validate")
	}
	if VerifyWebhookSignature(b, sigA, secret) {
		t.Fatalf("expected signature over re-ordered bytes to fail")
	}
}

func TestVerifyCheckoutSignature(t *testing.T) {
	secret := "key-secret"
	orderID := "order_Nxq1"
	paymentID := "pay_Nxq2"

	valid := SignWebhookBody([]byte(orderID+"|"+paymentID), secret)

	if !VerifyCheckoutSignature(orderID, paymentID, valid, secret) {
		t.Fatalf("expected checkout signature to validate")
	}
	if VerifyCheckoutSignature(orderID, "pay_other", valid, secret) {
		t.Fatalf("expected mismatched payment id to fail")
	}
	if VerifyCheckoutSignature("", paymentID, valid, secret) {
		t.Fatalf("expected empty order id to fail")
	}
	if VerifyCheckoutSignature(orderID, paymentID, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
}
