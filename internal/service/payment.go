package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bookstore/internal/client"
	"bookstore/internal/dto"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type PaymentService interface {
	Start(ctx context.Context, order *model.Order, nonce string) (*dto.PaymentResponse, error)
	Resume(ctx context.Context, order *model.Order) (*dto.PaymentResponse, error)
	CapturePaypal(ctx context.Context, paypalOrderID string) (*model.Order, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type paymentServiceImpl struct {
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	paypalClient     client.PaypalClient
	braintreeClient  client.BraintreeClient
	serviceBaseUrl   string
	currency         string
	log              *slog.Logger
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	paypalClient client.PaypalClient,
	braintreeClient client.BraintreeClient,
	serviceBaseUrl string,
	currency string,
	log *slog.Logger,
) PaymentService {
	return &paymentServiceImpl{
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		paypalClient:     paypalClient,
		braintreeClient:  braintreeClient,
		serviceBaseUrl:   strings.TrimRight(serviceBaseUrl, "/"),
		currency:         currency,
		log:              log,
	}
}

// Start begins collecting payment for a freshly created order. Gateway
// failures are recorded on the order and reported in the response rather
// than as an error, since the order itself already exists.
func (s *paymentServiceImpl) Start(ctx context.Context, order *model.Order, nonce string) (*dto.PaymentResponse, error) {
	resp := &dto.PaymentResponse{
		Method: order.PaymentMethod,
		Status: model.PaymentPending,
	}

	switch order.PaymentMethod {
	case model.PaymentCOD:
		return resp, nil

	case model.PaymentPaypal:
		result, err := s.paypalClient.CreateOrder(ctx, &client.CreateOrderRequest{
			Amount:    order.Total.StringFixed(2),
			Currency:  s.currency,
			CustomID:  strconv.FormatUint(uint64(order.ID), 10),
			ReturnURL: s.serviceBaseUrl + "/api/payments/paypal/success",
			CancelURL: s.serviceBaseUrl,
		})
		if err != nil {
			s.log.Error("paypal create order failed", "order_id", order.ID, "err", err)
			return s.fail(ctx, order, resp)
		}
		if err := s.orderRepo.SetPaymentReference(ctx, order.ID, result.OrderID); err != nil {
			return nil, fmt.Errorf("store payment reference: %w", err)
		}
		order.PaymentReference = result.OrderID
		resp.Reference = result.OrderID
		resp.ApprovalURL = result.ApproveURL
		return resp, nil

	case model.PaymentCard:
		result, err := s.braintreeClient.ChargeNonce(ctx, nonce, order.Total, strconv.FormatUint(uint64(order.ID), 10))
		if err != nil {
			s.log.Error("card charge failed", "order_id", order.ID, "err", err)
			return s.fail(ctx, order, resp)
		}
		if result.TransactionID != "" {
			if err := s.orderRepo.SetPaymentReference(ctx, order.ID, result.TransactionID); err != nil {
				return nil, fmt.Errorf("store payment reference: %w", err)
			}
			order.PaymentReference = result.TransactionID
			resp.Reference = result.TransactionID
		}
		if result.Declined {
			s.log.Warn("card declined", "order_id", order.ID, "status", result.Status, "message", result.Message)
			return s.fail(ctx, order, resp)
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, model.PaymentCompleted); err != nil {
			return nil, fmt.Errorf("mark payment completed: %w", err)
		}
		order.PaymentStatus = model.PaymentCompleted
		resp.Status = model.PaymentCompleted
		return resp, nil
	}

	return nil, invalidf("unknown payment method %q", order.PaymentMethod)
}

// Resume reports the payment state of an order answered from an idempotent
// replay. A paypal checkout that never got a gateway order, because the first
// request failed after the order committed, is started again. Card payments
// are never retried here since the nonce is single use.
func (s *paymentServiceImpl) Resume(ctx context.Context, order *model.Order) (*dto.PaymentResponse, error) {
	if order.PaymentMethod == model.PaymentPaypal &&
		order.PaymentStatus == model.PaymentPending &&
		order.PaymentReference == "" {
		s.log.Info("restarting paypal checkout", "order_id", order.ID)
		return s.Start(ctx, order, "")
	}

	return &dto.PaymentResponse{
		Method:    order.PaymentMethod,
		Status:    order.PaymentStatus,
		Reference: order.PaymentReference,
	}, nil
}

func (s *paymentServiceImpl) fail(ctx context.Context, order *model.Order, resp *dto.PaymentResponse) (*dto.PaymentResponse, error) {
	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, model.PaymentFailed); err != nil {
		return nil, fmt.Errorf("mark payment failed: %w", err)
	}
	order.PaymentStatus = model.PaymentFailed
	resp.Status = model.PaymentFailed
	return resp, nil
}

// CapturePaypal completes a paypal checkout after the buyer approved it.
func (s *paymentServiceImpl) CapturePaypal(ctx context.Context, paypalOrderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByPaymentReference(ctx, paypalOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by payment reference: %w", err)
	}
	if order.PaymentStatus.Paid() {
		return order, nil
	}

	if _, err := s.paypalClient.CaptureOrder(ctx, paypalOrderID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, model.PaymentCaptured); err != nil {
		return nil, fmt.Errorf("mark payment captured: %w", err)
	}
	order.PaymentStatus = model.PaymentCaptured

	s.log.Info("paypal payment captured", "order_id", order.ID, "paypal_order_id", paypalOrderID)
	return order, nil
}

// HandleWebhook applies a verified paypal event at most once.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.paypalClient.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return invalidf("decode webhook payload: %v", err)
	}
	if event.ID == "" {
		return invalidf("webhook event has no id")
	}

	seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.log.Info("duplicate paypal webhook ignored", "event_id", event.ID)
		return nil
	}

	switch event.EventType {
	case model.EventCaptureCompleted:
		err = s.applyCapture(ctx, &event, model.PaymentCompleted)
	case model.EventCaptureDenied:
		err = s.applyCapture(ctx, &event, model.PaymentFailed)
	default:
		s.log.Debug("unhandled paypal webhook", "event_id", event.ID, "event_type", event.EventType)
	}
	if err != nil {
		return err
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.EventType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("mark webhook processed: %w", err)
	}
	return nil
}

func (s *paymentServiceImpl) applyCapture(ctx context.Context, event *model.PayPalWebhookEvent, status model.PaymentStatus) error {
	order, err := s.orderForEvent(ctx, event)
	if err != nil {
		return err
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	s.log.Info("paypal webhook applied",
		"event_id", event.ID,
		"event_type", event.EventType,
		"order_id", order.ID,
		"payment_status", status,
	)
	return nil
}

// orderForEvent prefers our own order id echoed in custom_id and falls back
// to the paypal order id the capture belongs to.
func (s *paymentServiceImpl) orderForEvent(ctx context.Context, event *model.PayPalWebhookEvent) (*model.Order, error) {
	if id, err := strconv.ParseUint(event.Resource.CustomID, 10, 64); err == nil && id > 0 {
		order, err := s.orderRepo.FindByID(ctx, uint(id))
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find order: %w", err)
		}
	}

	ref := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if ref == "" {
		return nil, invalidf("could not find order_id in webhook payload")
	}
	order, err := s.orderRepo.FindByPaymentReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by payment reference: %w", err)
	}
	return order, nil
}
