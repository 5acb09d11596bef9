package providerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"smm-market/internal/common/providerprotocol"
	"smm-market/pkg/logging"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client talks to one provider panel. It keeps no state between calls
// besides its configuration.
type Client struct {
	http   *resty.Client
	url    string
	apiKey string
	logger *logging.ZapLogger
}

func New(cfg Config, logger *logging.ZapLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:   resty.New().SetTimeout(timeout),
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) GetOrderStatus(ctx context.Context, externalOrderID string) (providerprotocol.Payload, error) {
	return c.call(ctx, providerprotocol.ActionStatus, map[string]string{
		providerprotocol.ParamOrder: externalOrderID,
	})
}

// BatchStatus is one entry of a multi-order status response.
type BatchStatus struct {
	Payload providerprotocol.Payload
	Err     error
}

// GetMultipleOrderStatus checks up to MaxBatchOrders orders in one call.
// Entries the provider rejects carry their own error and do not fail the batch.
func (c *Client) GetMultipleOrderStatus(ctx context.Context, externalOrderIDs []string) (map[string]BatchStatus, error) {
	if len(externalOrderIDs) == 0 {
		return nil, ErrNoOrders
	}
	if len(externalOrderIDs) > providerprotocol.MaxBatchOrders {
		return nil, ErrTooManyOrders
	}
	payload, err := c.call(ctx, providerprotocol.ActionStatus, map[string]string{
		providerprotocol.ParamOrders: strings.Join(externalOrderIDs, ","),
	})
	if err != nil {
		return nil, err
	}
	res := make(map[string]BatchStatus, len(externalOrderIDs))
	for _, id := range externalOrderIDs {
		res[id] = batchEntry(payload[id])
	}
	return res, nil
}

func batchEntry(raw any) BatchStatus {
	entry, ok := raw.(map[string]any)
	if !ok {
		return BatchStatus{Err: &APIError{Action: providerprotocol.ActionStatus, Message: "order missing from batch response"}}
	}
	payload := providerprotocol.Payload(entry)
	if msg, failed := payload.Error(); failed {
		return BatchStatus{Err: &APIError{Action: providerprotocol.ActionStatus, Message: msg}}
	}
	return BatchStatus{Payload: payload}
}

func (c *Client) GetBalance(ctx context.Context) (providerprotocol.Balance, error) {
	payload, err := c.call(ctx, providerprotocol.ActionBalance, nil)
	if err != nil {
		return providerprotocol.Balance{}, err
	}
	currency, _ := payload.String(providerprotocol.FieldCurrency)
	return providerprotocol.Balance{
		Balance:  payload.Decimal(providerprotocol.FieldBalance),
		Currency: currency,
	}, nil
}

func (c *Client) GetServices(ctx context.Context) ([]providerprotocol.Service, error) {
	var services []providerprotocol.Service
	if err := c.callList(ctx, providerprotocol.ActionServices, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// AddOrder places an order upstream and returns the provider's identifier for it.
func (c *Client) AddOrder(ctx context.Context, serviceID, link string, quantity int64) (string, error) {
	payload, err := c.call(ctx, providerprotocol.ActionAdd, map[string]string{
		providerprotocol.ParamService:  serviceID,
		providerprotocol.ParamLink:     link,
		providerprotocol.ParamQuantity: strconv.FormatInt(quantity, 10),
	})
	if err != nil {
		return "", err
	}
	externalOrderID, ok := payload.String(providerprotocol.FieldOrder)
	if !ok || externalOrderID == "" {
		return "", &APIError{Action: providerprotocol.ActionAdd, Message: "provider did not return an order id"}
	}
	return externalOrderID, nil
}

func (c *Client) CreateRefill(ctx context.Context, externalOrderID string) (string, error) {
	payload, err := c.call(ctx, providerprotocol.ActionRefill, map[string]string{
		providerprotocol.ParamOrder: externalOrderID,
	})
	if err != nil {
		return "", err
	}
	refillID, _ := payload.String(providerprotocol.FieldRefill)
	return refillID, nil
}

// CancelOrders accepts both the list answer of newer panels and a single object.
func (c *Client) CancelOrders(ctx context.Context, externalOrderIDs []string) ([]providerprotocol.Payload, error) {
	if len(externalOrderIDs) == 0 {
		return nil, ErrNoOrders
	}
	var res []providerprotocol.Payload
	err := c.callList(ctx, providerprotocol.ActionCancel, map[string]string{
		providerprotocol.ParamOrders: strings.Join(externalOrderIDs, ","),
	}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, action providerprotocol.Action, params map[string]string) (int, []byte, error) {
	form := make(map[string]string, len(params)+2)
	for k, v := range params {
		form[k] = v
	}
	form[providerprotocol.ParamKey] = c.apiKey
	form[providerprotocol.ParamAction] = string(action)

	resp, err := c.http.
		R().
		SetContext(ctx).
		SetFormData(form).
		Post(c.url)
	if err != nil {
		return 0, nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	c.logger.DebugCtx(ctx, "provider responded",
		zap.String("action", string(action)),
		zap.Int("statusCode", resp.StatusCode()),
	)
	return resp.StatusCode(), resp.Body(), nil
}

func (c *Client) call(
	ctx context.Context,
	action providerprotocol.Action,
	params map[string]string,
) (providerprotocol.Payload, error) {
	statusCode, body, err := c.post(ctx, action, params)
	if err != nil {
		return nil, err
	}
	var payload providerprotocol.Payload
	if err := decodeStrict(body, &payload); err != nil {
		return nil, newDecodeError(action, statusCode, body, err)
	}
	if msg, failed := payload.Error(); failed {
		return nil, &APIError{Action: action, Message: msg}
	}
	return payload, nil
}

// callList decodes array answers. An object answer is either a provider error
// or, for single-item actions, wrapped into a one-element list.
func (c *Client) callList(
	ctx context.Context,
	action providerprotocol.Action,
	params map[string]string,
	out any,
) error {
	statusCode, body, err := c.post(ctx, action, params)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload providerprotocol.Payload
		if err := decodeStrict(trimmed, &payload); err != nil {
			return newDecodeError(action, statusCode, body, err)
		}
		if msg, failed := payload.Error(); failed {
			return &APIError{Action: action, Message: msg}
		}
		trimmed = append(append([]byte{'['}, trimmed...), ']')
	}
	if err := decodeStrict(trimmed, out); err != nil {
		return newDecodeError(action, statusCode, body, err)
	}
	return nil
}

func decodeStrict(body []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return err //nolint:wrapcheck // wrapped by caller
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON document")
	}
	return nil
}
