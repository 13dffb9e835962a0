// Package stripe is the payment provider adapter: a thin client over the
// provider's form-encoded REST API plus webhook signature verification.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/config"
)

// Client talks to the provider API. It implements
// application.PaymentGateway; wrap it in RetryClient for transient
// fault handling.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(cfg config.StripeConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// CreateCheckoutSession opens a hosted checkout for the full booking
// fee as a destination charge: the application fee stays with the
// platform, the rest transfers to the mentor's connected account.
func (c *Client) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)
	if req.ProductDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", req.ProductDescription)
	}
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("client_reference_id", req.ClientReferenceID)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}
	form.Set("payment_intent_data[application_fee_amount]", strconv.FormatInt(req.ApplicationFeeCents, 10))
	form.Set("payment_intent_data[transfer_data][destination]", req.DestinationAccount)
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var resp checkoutSessionResponse
	if err := c.post(ctx, "/v1/checkout/sessions", form, &resp); err != nil {
		return nil, err
	}
	return &application.CheckoutSession{
		ID:          resp.ID,
		RedirectURL: resp.URL,
	}, nil
}

// CreateRefund returns funds on a payment intent. Metadata carries the
// booking id and cancellation context for reconciliation on the
// provider's dashboard.
func (c *Client) CreateRefund(ctx context.Context, req application.RefundRequest) (*application.Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", req.PaymentIntentID)
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	if req.Reason != "" {
		form.Set("metadata[reason]", req.Reason)
	}
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var resp refundResponse
	if err := c.post(ctx, "/v1/refunds", form, &resp); err != nil {
		return nil, err
	}
	return &application.Refund{
		ID:     resp.ID,
		Status: resp.Status,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error making request to %s after %s: %w", path, time.Since(start), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Type == "" {
			return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
		}
		return &Error{
			Type:       errResp.Error.Type,
			Code:       errResp.Error.Code,
			Message:    errResp.Error.Message,
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding json response: %w", err)
	}
	return nil
}
