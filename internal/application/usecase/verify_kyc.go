package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
)

// VerifyKYCUseCase runs the Aadhaar, PAN and bank account checks for a user
// and stores the outcome as the user's KYC record.
type VerifyKYCUseCase struct {
	kycRepo   port.KYCRepository
	verifier  port.IdentityVerifier
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewVerifyKYCUseCase wires dependencies.
func NewVerifyKYCUseCase(
	kycRepo port.KYCRepository,
	verifier port.IdentityVerifier,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *VerifyKYCUseCase {
	return &VerifyKYCUseCase{
		kycRepo:   kycRepo,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute verifies the three identity documents concurrently. A document that
// fails verification is recorded as such; an error is returned only when a
// check could not be carried out.
func (uc *VerifyKYCUseCase) Execute(ctx context.Context, req dto.VerifyKYCRequest) (dto.KYCResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.KYCResponse{}, err
	}

	bank := model.BankAccount{
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		HolderName:    req.AccountHolderName,
	}

	var aadhaarRes, panRes, bankRes model.VerificationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := uc.verifier.VerifyAadhaar(gctx, req.AadhaarNumber)
		if err != nil {
			return fmt.Errorf("verify aadhaar: %w", err)
		}
		aadhaarRes = r
		return nil
	})
	g.Go(func() error {
		r, err := uc.verifier.VerifyPAN(gctx, req.PAN)
		if err != nil {
			return fmt.Errorf("verify PAN: %w", err)
		}
		panRes = r
		return nil
	})
	g.Go(func() error {
		r, err := uc.verifier.VerifyBankAccount(gctx, bank)
		if err != nil {
			return fmt.Errorf("verify bank account: %w", err)
		}
		bankRes = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return dto.KYCResponse{}, err
	}

	rec, err := model.NewKYCRecord(req.UserID, req.AadhaarNumber, req.PAN, bank,
		aadhaarRes, panRes, bankRes, time.Now().UTC())
	if err != nil {
		return dto.KYCResponse{}, fmt.Errorf("create KYC record: %w", err)
	}

	if err := uc.kycRepo.Save(ctx, rec); err != nil {
		return dto.KYCResponse{}, fmt.Errorf("save KYC record: %w", err)
	}
	if err := uc.publisher.Publish(ctx, rec.DomainEvents()...); err != nil {
		return dto.KYCResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.InfoContext(ctx, "kyc verified",
		"user_id", req.UserID,
		"aadhaar_verified", aadhaarRes.Verified,
		"pan_verified", panRes.Verified,
		"bank_verified", bankRes.Verified,
		"account", bank.MaskedNumber(),
	)

	return toKYCResponse(rec), nil
}
