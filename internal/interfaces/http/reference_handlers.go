package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
)

// PricingConfig holds the defaults applied by POST /api/calculate.
type PricingConfig struct {
	VarianceThreshold decimal.Decimal
	DefaultTaxRate    decimal.Decimal
}

// RateQuery is the query of GET /api/rates.
type RateQuery struct {
	From string `form:"from" binding:"required,alpha,len=3"`
	To   string `form:"to" binding:"required,alpha,len=3"`
}

// RateResponse is the data of GET /api/rates.
type RateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// RateRequest is the body of PUT /api/rates.
type RateRequest struct {
	From string          `json:"from" binding:"required,alpha,len=3"`
	To   string          `json:"to" binding:"required,alpha,len=3,nefield=From"`
	Rate decimal.Decimal `json:"rate"`
}

// SequenceResponse is the data of POST /api/sequence/:kind/next.
type SequenceResponse struct {
	Number string `json:"number"`
}

// CalculateLine is one input line of POST /api/calculate.
type CalculateLine struct {
	Quantity     decimal.Decimal  `json:"qty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Discount     string           `json:"discount"`
	StandardCost *decimal.Decimal `json:"standard_cost"`
}

// CalculateRequest is the body of POST /api/calculate. TaxRate falls back to
// the configured default; ExchangeRate converts the grand total when set.
type CalculateRequest struct {
	Lines        []CalculateLine  `json:"lines" binding:"required"`
	Discount     string           `json:"discount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
}

// CalculatedLine is one output line of POST /api/calculate.
type CalculatedLine struct {
	pricing.LineAmounts
	Variance        *pricing.VarianceWarning `json:"variance,omitempty"`
	VarianceMessage string                   `json:"variance_message,omitempty"`
}

// CalculateResponse is the data of POST /api/calculate.
type CalculateResponse struct {
	Lines  []CalculatedLine `json:"lines"`
	Totals pricing.Totals   `json:"totals"`
}

// Calculate handles POST /api/calculate. Nothing is stored.
func (h *Handlers) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	taxRate := h.pricing.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	resp := CalculateResponse{Lines: make([]CalculatedLine, 0, len(req.Lines))}
	amounts := make([]pricing.LineAmounts, 0, len(req.Lines))
	for _, l := range req.Lines {
		a := pricing.CalculateLine(l.Quantity, l.UnitPrice, l.Discount)
		amounts = append(amounts, a)

		out := CalculatedLine{LineAmounts: a}
		if w := pricing.CheckVariance(l.UnitPrice, l.StandardCost, h.pricing.VarianceThreshold); w != nil {
			out.Variance = w
			out.VarianceMessage = w.String()
		}
		resp.Lines = append(resp.Lines, out)
	}

	resp.Totals = pricing.Aggregate(amounts, req.Discount, taxRate)
	if req.ExchangeRate != nil {
		resp.Totals = resp.Totals.Convert(*req.ExchangeRate)
	}
	ok(c, http.StatusOK, resp)
}

// GetRate handles GET /api/rates?from=&to=
func (h *Handlers) GetRate(c *gin.Context) {
	var q RateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "from and to must be three-letter currency codes")
		return
	}
	from, to := strings.ToUpper(q.From), strings.ToUpper(q.To)

	rate, err := h.backend.Rates.GetRate(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, "get exchange rate", err)
		return
	}
	ok(c, http.StatusOK, RateResponse{From: from, To: to, Rate: rate})
}

// ListRates handles GET /api/rates/all
func (h *Handlers) ListRates(c *gin.Context) {
	rates, err := h.backend.Rates.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list exchange rates", err)
		return
	}
	if rates == nil {
		rates = []*entity.ExchangeRate{}
	}
	ok(c, http.StatusOK, rates)
}

// UpsertRate handles PUT /api/rates
func (h *Handlers) UpsertRate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !req.Rate.IsPositive() {
		badRequest(c, "rate must be positive")
		return
	}

	rate := &entity.ExchangeRate{
		From: strings.ToUpper(req.From),
		To:   strings.ToUpper(req.To),
		Rate: req.Rate,
	}
	if err := h.backend.Rates.Upsert(c.Request.Context(), rate); err != nil {
		h.fail(c, "save exchange rate", err)
		return
	}
	h.logger.Info("Exchange rate updated", "from", rate.From, "to", rate.To, "rate", rate.Rate.String())
	ok(c, http.StatusOK, RateResponse{From: rate.From, To: rate.To, Rate: rate.Rate})
}

// NextNumber handles POST /api/sequence/:kind/next
func (h *Handlers) NextNumber(c *gin.Context) {
	kind := entity.DocumentKind(strings.ToUpper(c.Param("kind")))
	if !kind.IsValid() {
		badRequest(c, "unknown document kind "+string(kind))
		return
	}
	number, err := h.backend.Sequencer.NextNumber(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, "allocate document number", err)
		return
	}
	ok(c, http.StatusOK, SequenceResponse{Number: number})
}

// ListMasterData handles GET /api/master/:kind
func (h *Handlers) ListMasterData(c *gin.Context) {
	kind, valid := referenceKind(c)
	if !valid {
		return
	}
	items, err := h.backend.MasterData.List(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, "list master data", err)
		return
	}
	if items == nil {
		items = []entity.ReferenceItem{}
	}
	ok(c, http.StatusOK, items)
}

// GetMasterData handles GET /api/master/:kind/:id
func (h *Handlers) GetMasterData(c *gin.Context) {
	kind, valid := referenceKind(c)
	if !valid {
		return
	}
	item, err := h.backend.MasterData.GetByID(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		h.fail(c, "get master data", err)
		return
	}
	if item == nil {
		notFound(c, string(kind)+" "+c.Param("id")+" not found")
		return
	}
	ok(c, http.StatusOK, item)
}

func referenceKind(c *gin.Context) (entity.ReferenceKind, bool) {
	kind := entity.ReferenceKind(strings.ToLower(c.Param("kind")))
	if !kind.IsValid() {
		badRequest(c, "unknown master data kind "+string(kind))
		return "", false
	}
	return kind, true
}
