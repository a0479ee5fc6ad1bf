package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/models"
)

// Handler serves read-only queries over the synchronized store. All
// endpoints read the stock_future_view join and the quote table; the
// write path never goes through here.
type Handler struct {
	db *gorm.DB
}

type listParams struct {
	Begin  string `form:"begin"`
	End    string `form:"end"`
	Market string `form:"market"`
}

type quoteParams struct {
	Begin      string `form:"begin"`
	End        string `form:"end"`
	Limit      int    `form:"limit"`
	Descending bool   `form:"descending"`
}

// ListStocks returns securities filtered by observed date range and
// market. Market markers are never listed. TPEX is accepted as an alias
// for OTC.
func (h *Handler) ListStocks(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query, err := h.stockQuery(params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stocks []models.StockInfo
	if err := query.Order("id").Find(&stocks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(stocks), "stocks": stocks})
}

// GetStock returns one security with its display title.
func (h *Handler) GetStock(c *gin.Context) {
	var info models.StockInfo
	err := h.db.Where("id = ?", c.Param("id")).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock": info, "title": info.Title()})
}

// GetQuotes returns one security's daily quotes within an optional date
// range, ascending by default.
func (h *Handler) GetQuotes(c *gin.Context) {
	var params quoteParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := h.db.Model(&models.Quote{}).Where("id = ?", c.Param("id"))
	if params.Begin != "" {
		if _, err := time.Parse(models.DateLayout, params.Begin); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid begin date, use YYYY-MM-DD"})
			return
		}
		query = query.Where("date >= ?", params.Begin)
	}
	if params.End != "" {
		if _, err := time.Parse(models.DateLayout, params.End); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, use YYYY-MM-DD"})
			return
		}
		query = query.Where("date <= ?", params.End)
	}

	order := "date ASC"
	if params.Descending {
		order = "date DESC"
	}
	query = query.Order(order)
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(quotes), "quotes": quotes})
}

func (h *Handler) stockQuery(params listParams) (*gorm.DB, error) {
	query := h.db.Model(&models.StockInfo{}).
		Where("id != ? AND id != ?", models.TWSE.MarkerID(), models.OTC.MarkerID())

	if params.Begin != "" {
		if _, err := time.Parse(models.DateLayout, params.Begin); err != nil {
			return nil, errors.New("invalid begin date, use YYYY-MM-DD")
		}
		query = query.Where("mindate <= ?", params.Begin)
	}
	if params.End != "" {
		if _, err := time.Parse(models.DateLayout, params.End); err != nil {
			return nil, errors.New("invalid end date, use YYYY-MM-DD")
		}
		query = query.Where("maxdate >= ?", params.End)
	}
	if params.Market != "" {
		market := strings.ToUpper(params.Market)
		if market == "TPEX" {
			market = string(models.OTC)
		}
		query = query.Where("market = ?", market)
	}
	return query, nil
}

// SetupRoutes wires the read API onto a gin engine.
func SetupRoutes(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	h := &Handler{db: db}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/stocks", h.ListStocks)
	r.GET("/api/stocks/:id", h.GetStock)
	r.GET("/api/stocks/:id/quotes", h.GetQuotes)

	return r
}
