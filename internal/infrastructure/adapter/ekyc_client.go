package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/resilience"
)

var tracer = otel.Tracer("adapter")

// ErrProviderRejected is returned when the eKYC provider refuses a request
// outright (4xx). Such calls are not retried.
var ErrProviderRejected = port.ErrVerificationRejected

// EKYCClient calls a remote eKYC provider over HTTPS. Every call goes through
// a bulkhead, a circuit breaker and bounded retry.
// It implements port.IdentityVerifier.
type EKYCClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	metrics    port.DecisionMetrics
}

// NewEKYCClient creates a new EKYCClient. metrics may be nil.
func NewEKYCClient(
	httpClient *http.Client,
	baseURL, apiKey string,
	cb *gobreaker.CircuitBreaker,
	cfg resilience.Config,
	metrics port.DecisionMetrics,
) *EKYCClient {
	return &EKYCClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		metrics:    metrics,
	}
}

// IsBreakerSuccess tells the circuit breaker that provider rejections are
// not failures of the provider.
func IsBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrProviderRejected)
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

func (c *EKYCClient) VerifyAadhaar(ctx context.Context, aadhaar string) (model.VerificationResult, error) {
	return c.verify(ctx, "aadhaar", "/v1/aadhaar/verify", map[string]string{
		"aadhaar_number": aadhaar,
	})
}

func (c *EKYCClient) VerifyPAN(ctx context.Context, pan string) (model.VerificationResult, error) {
	return c.verify(ctx, "pan", "/v1/pan/verify", map[string]string{
		"pan": pan,
	})
}

func (c *EKYCClient) VerifyBankAccount(ctx context.Context, account model.BankAccount) (model.VerificationResult, error) {
	return c.verify(ctx, "bank", "/v1/bank/verify", map[string]string{
		"account_number": account.AccountNumber,
		"ifsc":           account.IFSC,
		"holder_name":    account.HolderName,
	})
}

func (c *EKYCClient) verify(ctx context.Context, check, path string, body map[string]string) (res model.VerificationResult, err error) {
	ctx, span := tracer.Start(ctx, "EKYCClient.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("ekyc.check", check))

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordCollaboratorCall("ekyc_"+check, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return model.VerificationResult{}, fmt.Errorf("ekyc %s: encode request: %w", check, err)
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return model.VerificationResult{}, fmt.Errorf("ekyc %s: %w", check, err)
	}
	defer c.bulkhead.Release()

	result, err := c.cb.Execute(func() (any, error) {
		var out verifyResponse
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var callErr error
			out, callErr = c.post(ctx, path, payload)
			return callErr
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return out, nil
	})
	if err != nil {
		return model.VerificationResult{}, fmt.Errorf("ekyc %s: %w", check, err)
	}

	out := result.(verifyResponse)
	span.SetAttributes(attribute.Bool("ekyc.verified", out.Verified))
	return model.VerificationResult{Verified: out.Verified, Message: out.Message}, nil
}

func (c *EKYCClient) post(ctx context.Context, path string, payload []byte) (verifyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return verifyResponse{}, resilience.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return verifyResponse{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return verifyResponse{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return verifyResponse{}, resilience.Permanent(
			fmt.Errorf("%w: status %d: %s", ErrProviderRejected, resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return verifyResponse{}, resilience.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}
