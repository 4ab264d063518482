package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tkartsan/waletapp/internal/app/port"
	"github.com/tkartsan/waletapp/internal/app/service"
	"github.com/tkartsan/waletapp/internal/domain/entity"
	"github.com/tkartsan/waletapp/internal/pkg/utils"
)

// AssetView is one display-formatted asset row: quantities carry 4 fractional
// digits, unit prices 7 and totals 5.
type AssetView struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	PriceUSD string `json:"priceUSD"`
	ValueUSD string `json:"valueUSD"`
}

// PortfolioResponse is the display-ready portfolio payload.
type PortfolioResponse struct {
	Address       string      `json:"address"`
	Assets        []AssetView `json:"assets"`
	TotalValueUSD string      `json:"totalValueUSD"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PortfolioHandler handles portfolio aggregation requests.
type PortfolioHandler struct {
	aggregator port.PortfolioAggregator
	tracker    *service.RunTracker
	logger     port.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(aggregator port.PortfolioAggregator, tracker *service.RunTracker, logger port.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		aggregator: aggregator,
		tracker:    tracker,
		logger:     logger,
	}
}

// GetPortfolioHandler handles GET /api/v1/portfolio/:address. A run whose
// address was superseded by a later-started request is discarded so a stale
// result can never be rendered over a newer one.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	address := c.Param("address")
	token := h.tracker.Begin(address)

	portfolio, err := h.aggregator.Aggregate(c.Request.Context(), address)
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid wallet address"})
		return
	case errors.Is(err, entity.ErrAggregationFailed):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to load wallet balances"})
		return
	case err != nil:
		h.logger.Error("Unexpected aggregation error", "address", address, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if !h.tracker.Current(token) {
		h.logger.Debug("Discarding superseded aggregation run", "address", token.Address)
		c.JSON(http.StatusConflict, errorResponse{Error: entity.ErrRunSuperseded.Error()})
		return
	}

	c.JSON(http.StatusOK, toPortfolioResponse(portfolio))
}

func toPortfolioResponse(p *entity.Portfolio) PortfolioResponse {
	assets := make([]AssetView, 0, len(p.Assets))
	for _, a := range p.Assets {
		assets = append(assets, AssetView{
			Name:     a.Name,
			Symbol:   a.Symbol,
			Quantity: utils.FormatDecimal(a.Quantity, utils.QuantityDisplayDigits),
			PriceUSD: utils.FormatDecimal(a.PriceUSD, utils.PriceDisplayDigits),
			ValueUSD: utils.FormatDecimal(a.ValueUSD, utils.ValueDisplayDigits),
		})
	}
	return PortfolioResponse{
		Address:       p.Address,
		Assets:        assets,
		TotalValueUSD: utils.FormatDecimal(p.TotalValueUSD, utils.ValueDisplayDigits),
	}
}
