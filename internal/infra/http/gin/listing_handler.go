package ginserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	quotesapp "staybook/internal/app/handlers/quotes"
	"staybook/internal/app/queries"
)

var errBadTime = errors.New("time must be RFC 3339 or YYYY-MM-DD")

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		badRequest(c, err)
		return
	}
	query := availabilityapp.GetCalendarQuery{ListingID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, *dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type QuoteHandler struct {
	Queries queries.Bus
}

type stayRequest struct {
	CheckIn  *time.Time `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
	Guests   int        `json:"guests"`
	Note     string     `json:"note"`
}

func (r stayRequest) times() (time.Time, time.Time) {
	var in, out time.Time
	if r.CheckIn != nil {
		in = *r.CheckIn
	}
	if r.CheckOut != nil {
		out = *r.CheckOut
	}
	return in, out
}

func (h QuoteHandler) Quote(c *gin.Context) {
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, out := req.times()
	query := quotesapp.QuoteStayQuery{
		ListingID: c.Param("id"),
		CheckIn:   in,
		CheckOut:  out,
		Guests:    req.Guests,
		Note:      req.Note,
	}
	result, err := queries.Ask[quotesapp.QuoteStayQuery, *dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseTimeParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errBadTime
}

var (
	_ AvailabilityHTTP = AvailabilityHandler{}
	_ QuoteHTTP        = QuoteHandler{}
)
