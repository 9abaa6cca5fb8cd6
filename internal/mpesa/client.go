// Package mpesa is a thin client for the Daraja STK-push flow plus the
// callback signature check. The provider confirms charges asynchronously
// through the payments callback endpoint.
package mpesa

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juajobs/juajobs-backend/internal/config"
)

type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passkey        string
	callbackURL    string
	webhookSecret  string
}

func NewClient(cfg config.MpesaConfig) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        cfg.BaseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		passkey:        cfg.Passkey,
		callbackURL:    cfg.CallbackURL,
		webhookSecret:  cfg.WebhookSecret,
	}
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the provider's synchronous acknowledgement. The
// charge result arrives later on the callback URL.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// CallbackPayload is the body the provider posts to the payments callback.
type CallbackPayload struct {
	ProviderRef   string  `json:"provider_ref" binding:"required"`
	Status        string  `json:"status" binding:"required"`
	Amount        float64 `json:"amount"`
	FailureReason string  `json:"failure_reason"`
}

// STKPush asks the provider to prompt the phone for payment. It returns
// the provider's checkout request ID, used later as the payment reference.
func (c *Client) STKPush(ctx context.Context, phoneNumber string, amount float64, accountRef, description string) (*STKPushResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.shortCode + c.passkey + timestamp))

	body := stkPushRequest{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            fmt.Sprintf("%.0f", amount),
		PartyA:            phoneNumber,
		PartyB:            c.shortCode,
		PhoneNumber:       phoneNumber,
		CallBackURL:       c.callbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mpesa: cannot marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("mpesa: cannot build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mpesa: cannot read response: %w", err)
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("mpesa: cannot parse response: %w", err)
	}

	if pushResp.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa: push rejected: %s", pushResp.ResponseDescription)
	}

	return &pushResp, nil
}

// accessToken fetches an OAuth token via client-credentials basic auth.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: cannot build token request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mpesa: cannot read token response: %w", err)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("mpesa: cannot parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("mpesa: empty access token")
	}

	return tok.AccessToken, nil
}

// ValidateSignature checks the callback's HMAC-SHA256 over the raw body.
// With no webhook secret configured (development) every callback passes.
func (c *Client) ValidateSignature(incomingSig string, body []byte) bool {
	if c.webhookSecret == "" {
		return true
	}
	h := hmac.New(sha256.New, []byte(c.webhookSecret))
	h.Write(body)
	calculated := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(calculated), []byte(incomingSig))
}
