package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"household-billing/internal/domain"
	"household-billing/internal/domain/ports/adapter"
)

const gatewayName = "fapshi"

// FapshiGateway implements adapter.PaymentGateway using direct HTTP calls
// against the Fapshi collection API.
type FapshiGateway struct {
	baseURL string
	apiUser string
	apiKey  string
	client  *http.Client
}

// NewFapshiGateway creates a gateway client. baseURL selects sandbox vs live.
func NewFapshiGateway(baseURL, apiUser, apiKey string) *FapshiGateway {
	return &FapshiGateway{
		baseURL: baseURL,
		apiUser: apiUser,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

func (g *FapshiGateway) Name() string { return gatewayName }

// fapshiDirectPayResponse represents the response from the direct-pay API.
type fapshiDirectPayResponse struct {
	Message       string `json:"message"`
	TransID       string `json:"transId"`
	Status        string `json:"status"`
	DateInitiated string `json:"dateInitiated"`
}

// fapshiStatusResponse represents the response from the payment-status API.
type fapshiStatusResponse struct {
	TransID string `json:"transId"`
	Status  string `json:"status"`
	Medium  string `json:"medium"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// DirectPay implements PaymentGateway.DirectPay using direct HTTP calls.
func (g *FapshiGateway) DirectPay(ctx context.Context, amount int64, phone, medium, message string) (*adapter.DirectPayResult, error) {
	requestData := map[string]interface{}{
		"amount":  amount,
		"phone":   phone,
		"medium":  medium,
		"message": message,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/direct-pay"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.NewGatewayError(gatewayName, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewGatewayError(gatewayName, "failed to read response body", err)
	}

	var response fapshiDirectPayResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewGatewayError(gatewayName, fmt.Sprintf("unexpected response: %s", string(body)), err)
	}

	if resp.StatusCode != http.StatusOK || response.TransID == "" {
		return nil, domain.NewGatewayError(gatewayName, response.Message, nil)
	}

	return &adapter.DirectPayResult{
		TransID: response.TransID,
		Status:  response.Status,
		Message: response.Message,
		Raw:     body,
	}, nil
}

// PaymentStatus implements PaymentGateway.PaymentStatus using direct HTTP calls.
func (g *FapshiGateway) PaymentStatus(ctx context.Context, transID string) (*adapter.StatusResult, error) {
	url := g.baseURL + "/payment-status/" + transID
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.NewGatewayError(gatewayName, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewGatewayError(gatewayName, "failed to read response body", err)
	}

	var response fapshiStatusResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewGatewayError(gatewayName, fmt.Sprintf("unexpected response: %s", string(body)), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewGatewayError(gatewayName, response.Message, nil)
	}

	return &adapter.StatusResult{
		TransID: response.TransID,
		Status:  response.Status,
		Medium:  response.Medium,
		Amount:  response.Amount,
		Raw:     body,
	}, nil
}

func (g *FapshiGateway) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiuser", g.apiUser)
	req.Header.Set("apikey", g.apiKey)
}
