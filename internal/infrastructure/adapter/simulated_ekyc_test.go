package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

func TestSimulatedVerifier_Aadhaar(t *testing.T) {
	v := NewSimulatedVerifier()
	tests := []struct {
		input    string
		verified bool
		message  string
	}{
		{"234567890123", true, "Aadhaar verified successfully"},
		{"111111111111", false, "Aadhaar verification failed. Please check your details."},
		{"12345678901", false, "Invalid Aadhaar format. Must be 12 digits."},
		{"12345678901a", false, "Invalid Aadhaar format. Must be 12 digits."},
		{"", false, "Invalid Aadhaar format. Must be 12 digits."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := v.VerifyAadhaar(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.verified, res.Verified)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestSimulatedVerifier_PAN(t *testing.T) {
	v := NewSimulatedVerifier()
	tests := []struct {
		input    string
		verified bool
		message  string
	}{
		{"ABCDE1234F", true, "PAN verified successfully"},
		{"AAAAA0000A", false, "PAN verification failed. Please check your details."},
		{"abcde1234f", false, "Invalid PAN format. Must be in format ABCDE1234F."},
		{"ABCD1234F", false, "Invalid PAN format. Must be in format ABCDE1234F."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := v.VerifyPAN(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.verified, res.Verified)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestSimulatedVerifier_BankAccount(t *testing.T) {
	v := NewSimulatedVerifier()
	tests := []struct {
		name     string
		account  model.BankAccount
		verified bool
		message  string
	}{
		{"valid", model.BankAccount{AccountNumber: "123456789012", IFSC: "HDFC0001234"}, true, "Bank account verified successfully"},
		{"refused ifsc", model.BankAccount{AccountNumber: "123456789012", IFSC: "DEMO0000000"}, false, "Bank account verification failed. Please check your details."},
		{"bad ifsc", model.BankAccount{AccountNumber: "123456789012", IFSC: "HDFC1001234"}, false, "Invalid IFSC format. Please check and try again."},
		{"short account", model.BankAccount{AccountNumber: "12345678", IFSC: "HDFC0001234"}, false, "Invalid account number. Must be 9 to 18 digits."},
		{"long account", model.BankAccount{AccountNumber: "1234567890123456789", IFSC: "HDFC0001234"}, false, "Invalid account number. Must be 9 to 18 digits."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.VerifyBankAccount(context.Background(), tt.account)
			require.NoError(t, err)
			assert.Equal(t, tt.verified, res.Verified)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}
