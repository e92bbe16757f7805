package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := []byte(`{"event":"charge.success","data":{"reference":"cf_ref_001"}}`)
	sig := svc.Sign("sk_test_secret", payload)

	assert.NotEmpty(t, sig)
	assert.Len(t, sig, 128) // SHA-512 hex
	assert.True(t, svc.Verify("sk_test_secret", payload, sig))
}

func TestHMACSignatureService_Verify_WrongKey(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := []byte(`{"event":"charge.success"}`)
	sig := svc.Sign("sk_test_secret", payload)

	assert.False(t, svc.Verify("sk_other_secret", payload, sig))
}

func TestHMACSignatureService_Verify_TamperedPayload(t *testing.T) {
	svc := NewHMACSignatureService()

	sig := svc.Sign("sk_test_secret", []byte(`{"amount":100}`))

	assert.False(t, svc.Verify("sk_test_secret", []byte(`{"amount":999}`), sig))
}

func TestHMACSignatureService_Verify_EmptySignature(t *testing.T) {
	svc := NewHMACSignatureService()

	assert.False(t, svc.Verify("sk_test_secret", []byte(`{}`), ""))
}

func TestHMACSignatureService_Deterministic(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := []byte("payload")
	assert.Equal(t, svc.Sign("key", payload), svc.Sign("key", payload))
}
