package payment

import (
	"context"
	"time"

	"paycallback/internal/pkg/httpclient"
)

// PakasirTransaction is the transaction object of Pakasir's transaction
// detail endpoint.
type PakasirTransaction struct {
	OrderID       string `json:"order_id"`
	Amount        Amount `json:"amount"`
	Project       string `json:"project"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	CompletedAt   string `json:"completed_at"`
}

// QrispwPayment is the answer of Qrispw's check-payment endpoint.
type QrispwPayment struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Amount  Amount `json:"amount"`
	Status  string `json:"status"`
	Error   string `json:"error"`
}

// ConfirmationClient performs the out-of-band transaction lookups. Every call
// is bounded by the verification timeout.
type ConfirmationClient struct {
	http    *httpclient.Client
	timeout time.Duration
}

func NewConfirmationClient(timeout time.Duration) *ConfirmationClient {
	return &ConfirmationClient{
		http:    httpclient.New().WithTimeout(timeout).WithRetries(0),
		timeout: timeout,
	}
}

// PakasirTransaction looks up a transaction. A nil result with a nil error
// means the gateway does not know the transaction.
func (c *ConfirmationClient) PakasirTransaction(ctx context.Context, baseURL, project, amount, orderID, apiKey string) (*PakasirTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out struct {
		Transaction *PakasirTransaction `json:"transaction"`
	}
	err := c.http.GetJSON(ctx, baseURL+"/api/transactiondetail", map[string]string{
		"project":  project,
		"amount":   amount,
		"order_id": orderID,
		"api_key":  apiKey,
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Transaction, nil
}

func (c *ConfirmationClient) QrispwPayment(ctx context.Context, baseURL, transactionID, apiKey, apiSecret string) (*QrispwPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out QrispwPayment
	err := c.http.GetJSON(ctx, baseURL+"/api/check-payment.php",
		map[string]string{"transaction_id": transactionID},
		map[string]string{"X-API-Key": apiKey, "X-API-Secret": apiSecret},
		&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
