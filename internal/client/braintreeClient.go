package client

import (
	"context"
	"errors"
	"fmt"
	"shopco-api/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// ErrPaymentDeclined marks a charge the processor refused.
var ErrPaymentDeclined = errors.New("payment declined")

type BraintreeClient interface {
	// Charge settles amount against a payment method nonce from the frontend drop-in
	// and returns the braintree transaction id.
	Charge(ctx context.Context, nonce string, amount decimal.Decimal, orderNumber string) (string, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Charge(ctx context.Context, nonce string, amount decimal.Decimal, orderNumber string) (string, error) {
	// braintree.NewDecimal(unscaled, scale): 50.00 -> NewDecimal(5000, 2)
	cents := amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		OrderId:            orderNumber,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		// refused sales come back as an api error response carrying the transaction
		var btErr *braintree.BraintreeError
		if errors.As(err, &btErr) && btErr.Transaction != nil && isDeclined(btErr.Transaction.Status) {
			return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, btErr.Transaction.ProcessorResponseText)
		}
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if isDeclined(tx.Status) {
		return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, tx.ProcessorResponseText)
	}

	return tx.Id, nil
}

func isDeclined(status braintree.TransactionStatus) bool {
	return status == braintree.TransactionStatusProcessorDeclined ||
		status == braintree.TransactionStatusGatewayRejected
}
