package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"NGN": true,
}

// HTTPGateway talks to the payment processor's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates a gateway client with a bounded request timeout.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	Email    string `json:"email"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Tier     string `json:"tier"`
}

type chargeResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
}

// Initiate creates a charge on the processor.
func (g *HTTPGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !supportedCurrencies[req.Currency] {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrInvalidRequest, req.Currency)
	}
	if req.SellerEmail == "" {
		return nil, fmt.Errorf("%w: seller email required", ErrInvalidRequest)
	}

	body, err := json.Marshal(chargeRequest{
		Email:    req.SellerEmail,
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Tier:     req.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		// A POST that never got an answer may or may not have created the
		// charge; surfacing it as unavailable makes the seller re-initiate.
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: processor returned %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: processor rejected charge (%d)", ErrInvalidRequest, resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed processor response: %v", ErrGatewayUnavailable, err)
	}
	if out.Reference == "" {
		return nil, fmt.Errorf("%w: processor returned no reference", ErrGatewayUnavailable)
	}

	return &InitiateResult{TransactionRef: out.Reference}, nil
}

// Verify polls the processor for a transaction's status. A timeout maps to
// ErrPendingRetry, not a hard failure: the processor may well have confirmed
// the charge while our request was in flight.
func (g *HTTPGateway) Verify(ctx context.Context, transactionRef string) (*VerifyResult, error) {
	if transactionRef == "" {
		return nil, fmt.Errorf("%w: empty transaction reference", ErrInvalidRequest)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/charges/"+url.PathEscape(transactionRef), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: verify timed out", ErrPendingRetry)
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, transactionRef)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: processor returned %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: processor rejected verify (%d)", ErrInvalidRequest, resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed processor response: %v", ErrGatewayUnavailable, err)
	}

	if out.Status == StatusPending || out.Status == "" {
		return nil, fmt.Errorf("%w: %s", ErrPendingRetry, transactionRef)
	}

	return &VerifyResult{
		Status:      out.Status,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
		SellerEmail: out.Email,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Timeout()
	}
	return false
}
