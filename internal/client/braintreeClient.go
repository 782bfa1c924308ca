package client

import (
	"context"
	"fmt"

	"bookstore/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

type ChargeResult struct {
	TransactionID string
	Status        string
	Declined      bool
	Message       string
}

type BraintreeClient interface {
	// ChargeNonce runs a sale for a client-side payment nonce and submits it
	// for settlement right away.
	ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (*ChargeResult, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

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

func (c *braintreeClientImpl) ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (*ChargeResult, error) {
	// braintree wants unscaled cents with an explicit scale: 50.00 -> NewDecimal(5000, 2)
	cents := amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	res := &ChargeResult{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
	}
	switch tx.Status {
	case braintree.TransactionStatusProcessorDeclined,
		braintree.TransactionStatusGatewayRejected,
		braintree.TransactionStatusFailed:
		res.Declined = true
		res.Message = tx.ProcessorResponseText
	}

	return res, nil
}
