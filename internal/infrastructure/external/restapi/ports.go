package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

func documentPath(id int64) string {
	return "/api/documents/" + strconv.FormatInt(id, 10)
}

func (c *Client) GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error) {
	var rec entity.DocumentRecord
	if err := c.do(ctx, http.MethodGet, documentPath(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Create(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	var rec entity.DocumentRecord
	if err := c.do(ctx, http.MethodPost, "/api/documents", nil, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Update(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	var rec entity.DocumentRecord
	if err := c.do(ctx, http.MethodPut, documentPath(id), nil, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(ctx context.Context, id int64) (bool, error) {
	err := c.do(ctx, http.MethodDelete, documentPath(id), nil, nil, nil)
	if errors.Is(err, port.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.DocumentRecord, error) {
	q := url.Values{}
	if filter.Kind != "" {
		q.Set("kind", string(filter.Kind))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	var recs []*entity.DocumentRecord
	if err := c.do(ctx, http.MethodGet, "/api/documents", q, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// ActionRequest is the body of a workflow action call.
type ActionRequest struct {
	Remark string `json:"remark,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (c *Client) action(ctx context.Context, id int64, name string, body ActionRequest) (*entity.ActionResult, error) {
	var res entity.ActionResult
	if err := c.do(ctx, http.MethodPost, documentPath(id)+"/"+name, nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Submit(ctx context.Context, id int64) (*entity.ActionResult, error) {
	return c.action(ctx, id, "submit", ActionRequest{})
}

func (c *Client) Approve(ctx context.Context, id int64, remark string) (*entity.ActionResult, error) {
	return c.action(ctx, id, "approve", ActionRequest{Remark: remark})
}

func (c *Client) Reject(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return c.action(ctx, id, "reject", ActionRequest{Reason: reason})
}

func (c *Client) Cancel(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return c.action(ctx, id, "cancel", ActionRequest{Reason: reason})
}

// RateResponse is the data of GET /api/rates.
type RateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

func (c *Client) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	var res RateResponse
	err := c.do(ctx, http.MethodGet, "/api/rates", url.Values{"from": {from}, "to": {to}}, nil, &res)
	if err != nil && isUnreachable(err) && c.fallback != nil && c.fallback.Rates != nil {
		c.logger.Warn("Rate API unreachable, using fallback", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return c.fallback.Rates.GetRate(ctx, from, to)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return res.Rate, nil
}

// SequenceResponse is the data of POST /api/sequence/:kind/next.
type SequenceResponse struct {
	Number string `json:"number"`
}

// NextNumber never falls back; a failure is returned to the caller.
func (c *Client) NextNumber(ctx context.Context, kind entity.DocumentKind) (string, error) {
	var res SequenceResponse
	if err := c.do(ctx, http.MethodPost, "/api/sequence/"+url.PathEscape(string(kind))+"/next", nil, nil, &res); err != nil {
		return "", err
	}
	if res.Number == "" {
		return "", fmt.Errorf("server returned an empty %s number", kind)
	}
	return res.Number, nil
}

func (c *Client) ListReference(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	var items []entity.ReferenceItem
	err := c.do(ctx, http.MethodGet, "/api/master/"+url.PathEscape(string(kind)), nil, nil, &items)
	if err != nil && isUnreachable(err) && c.fallback != nil && c.fallback.MasterData != nil {
		c.logger.Warn("Master data API unreachable, using fallback", zap.String("kind", string(kind)), zap.Error(err))
		return c.fallback.MasterData.List(ctx, kind)
	}
	return items, err
}

func (c *Client) GetReference(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	var item entity.ReferenceItem
	err := c.do(ctx, http.MethodGet, "/api/master/"+url.PathEscape(string(kind))+"/"+url.PathEscape(id), nil, nil, &item)
	switch {
	case err == nil:
		return &item, nil
	case errors.Is(err, port.ErrNotFound):
		return nil, nil
	case isUnreachable(err) && c.fallback != nil && c.fallback.MasterData != nil:
		c.logger.Warn("Master data API unreachable, using fallback", zap.String("kind", string(kind)), zap.Error(err))
		return c.fallback.MasterData.GetByID(ctx, kind, id)
	}
	return nil, err
}

// MasterData adapts the client to port.MasterDataLookup, whose List and
// GetByID names clash with the document methods.
func (c *Client) MasterData() port.MasterDataLookup {
	return masterData{c}
}

type masterData struct{ c *Client }

func (m masterData) List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	return m.c.ListReference(ctx, kind)
}

func (m masterData) GetByID(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	return m.c.GetReference(ctx, kind, id)
}

var (
	_ port.DocumentRepository   = (*Client)(nil)
	_ port.WorkflowActions      = (*Client)(nil)
	_ port.ExchangeRateProvider = (*Client)(nil)
	_ port.NumberSequencer      = (*Client)(nil)
)

// RateTable adapts the client to port.ExchangeRateStore.
func (c *Client) RateTable() port.ExchangeRateStore {
	return rateTable{c}
}

type rateTable struct{ c *Client }

func (r rateTable) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return r.c.GetRate(ctx, from, to)
}

func (r rateTable) Upsert(ctx context.Context, rate *entity.ExchangeRate) error {
	body := RateResponse{From: rate.From, To: rate.To, Rate: rate.Rate}
	return r.c.do(ctx, http.MethodPut, "/api/rates", nil, body, nil)
}

func (r rateTable) List(ctx context.Context) ([]*entity.ExchangeRate, error) {
	var rates []*entity.ExchangeRate
	if err := r.c.do(ctx, http.MethodGet, "/api/rates/all", nil, nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
