package adapter

import (
	"context"
	"regexp"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
)

var (
	aadhaarPattern       = regexp.MustCompile(`^\d{12}$`)
	panPattern           = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)
)

// Test identities the simulated provider always refuses.
const (
	refusedAadhaar = "111111111111"
	refusedPAN     = "AAAAA0000A"
	refusedIFSC    = "DEMO0000000"
)

// SimulatedVerifier is a development adapter that checks document formats
// locally and refuses a fixed set of well-known test identities.
// It implements port.IdentityVerifier.
type SimulatedVerifier struct{}

// NewSimulatedVerifier creates a new simulated eKYC adapter.
func NewSimulatedVerifier() *SimulatedVerifier {
	return &SimulatedVerifier{}
}

func (v *SimulatedVerifier) VerifyAadhaar(_ context.Context, aadhaar string) (model.VerificationResult, error) {
	if !aadhaarPattern.MatchString(aadhaar) {
		return failed("Invalid Aadhaar format. Must be 12 digits."), nil
	}
	if aadhaar == refusedAadhaar {
		return failed("Aadhaar verification failed. Please check your details."), nil
	}
	return passed("Aadhaar verified successfully"), nil
}

func (v *SimulatedVerifier) VerifyPAN(_ context.Context, pan string) (model.VerificationResult, error) {
	if !panPattern.MatchString(pan) {
		return failed("Invalid PAN format. Must be in format ABCDE1234F."), nil
	}
	if pan == refusedPAN {
		return failed("PAN verification failed. Please check your details."), nil
	}
	return passed("PAN verified successfully"), nil
}

func (v *SimulatedVerifier) VerifyBankAccount(_ context.Context, account model.BankAccount) (model.VerificationResult, error) {
	if !ifscPattern.MatchString(account.IFSC) {
		return failed("Invalid IFSC format. Please check and try again."), nil
	}
	if !accountNumberPattern.MatchString(account.AccountNumber) {
		return failed("Invalid account number. Must be 9 to 18 digits."), nil
	}
	if account.IFSC == refusedIFSC {
		return failed("Bank account verification failed. Please check your details."), nil
	}
	return passed("Bank account verified successfully"), nil
}

func passed(msg string) model.VerificationResult {
	return model.VerificationResult{Verified: true, Message: msg}
}

func failed(msg string) model.VerificationResult {
	return model.VerificationResult{Verified: false, Message: msg}
}
