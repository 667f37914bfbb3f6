package model

import (
	"errors"
	"strings"
	"time"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
)

// VerificationResult is the outcome of a single eKYC check.
type VerificationResult struct {
	Verified bool
	Message  string
}

// VerifiedIdentity is the set of eKYC facts the underwriting engine consumes.
type VerifiedIdentity struct {
	AadhaarVerified bool
	PANVerified     bool
	BankVerified    bool
}

// IsComplete reports whether Aadhaar, PAN and bank account are all verified.
func (v VerifiedIdentity) IsComplete() bool {
	return v.AadhaarVerified && v.PANVerified && v.BankVerified
}

// BankAccount is the payout destination captured during eKYC.
type BankAccount struct {
	AccountNumber string
	IFSC          string
	HolderName    string
}

// MaskedNumber shows only the last four digits of the account number.
func (b BankAccount) MaskedNumber() string {
	return MaskTail(b.AccountNumber, 4)
}

// MaskTail replaces all but the last n characters of s with 'X'.
func MaskTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.Repeat("X", len(s)-n) + s[len(s)-n:]
}

// KYCRecord is the latest eKYC verification outcome for a user. A new
// verification replaces the previous record wholesale.
type KYCRecord struct {
	userID        string
	aadhaarLast4  string
	pan           string
	bank          BankAccount
	aadhaarResult VerificationResult
	panResult     VerificationResult
	bankResult    VerificationResult
	verifiedAt    time.Time
	domainEvents  []event.DomainEvent
}

// NewKYCRecord records the three verification outcomes for a user. Only the
// last four digits of the Aadhaar number are retained.
func NewKYCRecord(
	userID, aadhaar, pan string,
	bank BankAccount,
	aadhaarResult, panResult, bankResult VerificationResult,
	now time.Time,
) (KYCRecord, error) {
	if userID == "" {
		return KYCRecord{}, errors.New("user ID is required")
	}
	rec := KYCRecord{
		userID:        userID,
		aadhaarLast4:  lastN(aadhaar, 4),
		pan:           pan,
		bank:          bank,
		aadhaarResult: aadhaarResult,
		panResult:     panResult,
		bankResult:    bankResult,
		verifiedAt:    now,
	}
	rec.domainEvents = append(rec.domainEvents, event.NewKYCVerified(
		userID, aadhaarResult.Verified, panResult.Verified, bankResult.Verified, now,
	))
	return rec, nil
}

// KYCRecordSnapshot is the persisted state of a KYC record.
type KYCRecordSnapshot struct {
	UserID        string
	AadhaarLast4  string
	PAN           string
	Bank          BankAccount
	AadhaarResult VerificationResult
	PANResult     VerificationResult
	BankResult    VerificationResult
	VerifiedAt    time.Time
}

// ReconstructKYCRecord rebuilds a record from persistence.
func ReconstructKYCRecord(s KYCRecordSnapshot) KYCRecord {
	return KYCRecord{
		userID:        s.UserID,
		aadhaarLast4:  s.AadhaarLast4,
		pan:           s.PAN,
		bank:          s.Bank,
		aadhaarResult: s.AadhaarResult,
		panResult:     s.PANResult,
		bankResult:    s.BankResult,
		verifiedAt:    s.VerifiedAt,
	}
}

// Snapshot exports the persisted state of the record.
func (k KYCRecord) Snapshot() KYCRecordSnapshot {
	return KYCRecordSnapshot{
		UserID:        k.userID,
		AadhaarLast4:  k.aadhaarLast4,
		PAN:           k.pan,
		Bank:          k.bank,
		AadhaarResult: k.aadhaarResult,
		PANResult:     k.panResult,
		BankResult:    k.bankResult,
		VerifiedAt:    k.verifiedAt,
	}
}

// Identity returns the verified flags consumed by underwriting.
func (k KYCRecord) Identity() VerifiedIdentity {
	return VerifiedIdentity{
		AadhaarVerified: k.aadhaarResult.Verified,
		PANVerified:     k.panResult.Verified,
		BankVerified:    k.bankResult.Verified,
	}
}

func (k KYCRecord) UserID() string                    { return k.userID }
func (k KYCRecord) AadhaarLast4() string              { return k.aadhaarLast4 }
func (k KYCRecord) PAN() string                       { return k.pan }
func (k KYCRecord) Bank() BankAccount                 { return k.bank }
func (k KYCRecord) AadhaarResult() VerificationResult { return k.aadhaarResult }
func (k KYCRecord) PANResult() VerificationResult     { return k.panResult }
func (k KYCRecord) BankResult() VerificationResult    { return k.bankResult }
func (k KYCRecord) VerifiedAt() time.Time             { return k.verifiedAt }
func (k KYCRecord) DomainEvents() []event.DomainEvent { return k.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (k KYCRecord) ClearEvents() KYCRecord {
	next := k
	next.domainEvents = nil
	return next
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
