package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	wizardapp "staybook/internal/app/handlers/wizard"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type WizardHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type startWizardRequest struct {
	ListingID string `json:"listingId"`
}

func (h WizardHandler) Start(c *gin.Context) {
	var req startWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := wizardapp.StartWizardCommand{ListingID: req.ListingID}
	h.dispatch(c, http.StatusCreated, cmd)
}

func (h WizardHandler) Get(c *gin.Context) {
	query := wizardapp.GetWizardQuery{WizardID: c.Param("id")}
	result, err := queries.Ask[wizardapp.GetWizardQuery, *dto.Wizard](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WizardHandler) UpdateDates(c *gin.Context) {
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, out := req.times()
	cmd := wizardapp.UpdateDatesCommand{
		WizardID: c.Param("id"),
		CheckIn:  in,
		CheckOut: out,
		Guests:   req.Guests,
		Note:     req.Note,
	}
	h.dispatch(c, http.StatusOK, cmd)
}

func (h WizardHandler) Advance(c *gin.Context) {
	h.dispatch(c, http.StatusOK, wizardapp.AdvanceWizardCommand{WizardID: c.Param("id")})
}

func (h WizardHandler) Back(c *gin.Context) {
	h.dispatch(c, http.StatusOK, wizardapp.BackWizardCommand{WizardID: c.Param("id")})
}

func (h WizardHandler) UpdateContact(c *gin.Context) {
	var contact domainbooking.ContactInfo
	if err := c.ShouldBindJSON(&contact); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, wizardapp.UpdateContactCommand{WizardID: c.Param("id"), Contact: contact})
}

func (h WizardHandler) Submit(c *gin.Context) {
	cmd := wizardapp.SubmitWizardCommand{
		WizardID:        c.Param("id"),
		IdempotencyKeyV: c.GetHeader(IdempotencyKeyHeader),
	}
	h.dispatch(c, http.StatusOK, cmd)
}

func (h WizardHandler) Refresh(c *gin.Context) {
	h.dispatch(c, http.StatusOK, wizardapp.RefreshIntervalsCommand{WizardID: c.Param("id")})
}

func (h WizardHandler) dispatch(c *gin.Context, status int, cmd commands.Command) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "commands unavailable"})
		return
	}
	res, err := h.Commands.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	view, ok := res.(*dto.Wizard)
	if !ok || view == nil {
		writeError(c, commands.ErrResultType)
		return
	}
	c.JSON(status, view)
}

var _ WizardHTTP = WizardHandler{}
