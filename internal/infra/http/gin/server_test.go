package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	"staybook/internal/app/service"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/submission"
	"staybook/internal/infra/validation"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := memory.NewListingRepository()
	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:                "lst-1",
		Pricing:           rates.Fields{Nightly: 20000},
		CleaningFee:       5000,
		WeeklyDiscountPct: 10,
		MaxGuests:         4,
		AllowedCheckIn:    "15:00",
		AllowedCheckOut:   "11:00",
		Booked:            []daterange.DateRange{{CheckIn: at(10, 15), CheckOut: at(12, 11)}},
		Now:               now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), l))

	buses := service.Build(service.Options{
		Listings:    repo,
		Wizards:     memory.NewWizardRepository(),
		Validator:   domainbooking.NewValidator(0),
		Policy:      policies.StaticPricingPolicy{Policy: domainpricing.DefaultPolicy()},
		Clock:       policies.FixedClock{At: now},
		Outbox:      memory.NewOutbox(),
		Submitter:   &submission.ReservingSubmitter{Listings: repo},
		Idempotency: memory.NewIdempotencyStore(),
		Messages:    validation.NewStructValidator(),
	})
	logger := obs.NewLoggerTo(&bytes.Buffer{}, "test", "error")
	health := obs.HealthHandlers{Checks: map[string]obs.Check{
		"storage": func(context.Context) error { return nil },
	}}
	return NewRouter(config.Config{Env: "test"}, obs.Middleware{Logger: logger}, health, obs.NewMetrics("staybook_test"), Handlers{
		Availability: AvailabilityHandler{Queries: buses.Queries},
		Quote:        QuoteHandler{Queries: buses.Queries},
		Wizard:       WizardHandler{Commands: buses.Commands, Queries: buses.Queries},
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCalendarEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/listings/lst-1/calendar?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, []any{"2025-03-10", "2025-03-11"}, body["disabledDays"])
	assert.Equal(t, "15:00", body["allowedCheckIn"])
	assert.NotEmpty(t, w.Header().Get(obs.RequestIDHeader))

	w = do(t, r, http.MethodGet, "/api/v1/listings/lst-1/calendar?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/listings/missing/calendar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/listings/lst-1/quote", map[string]any{
		"checkIn":  at(13, 15),
		"checkOut": at(23, 11),
		"guests":   2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["bookable"])
	pricing := body["pricing"].(map[string]any)
	assert.Equal(t, float64(199800), pricing["payable"])

	w = do(t, r, http.MethodPost, "/api/v1/listings/lst-1/quote", map[string]any{
		"checkIn":  at(9, 15),
		"checkOut": at(11, 11),
		"guests":   2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["bookable"])
	result := body["validation"].(map[string]any)
	assert.Equal(t, true, result["unavailable"])
}

func TestWizardEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/wizards", map[string]any{"listingId": "lst-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)
	base := "/api/v1/wizards/" + id

	w = do(t, r, http.MethodPost, base+"/advance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	rejected := decode(t, w)
	require.Contains(t, rejected, "wizard")

	w = do(t, r, http.MethodPut, base+"/dates", map[string]any{"checkIn": at(13, 15), "checkOut": at(16, 11), "guests": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "COLLECTING_CONTACT", decode(t, w)["state"])

	w = do(t, r, http.MethodPut, base+"/contact", map[string]any{"fullName": "A", "email": "bad", "phoneNumber": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["validation"].(map[string]any)["valid"])

	w = do(t, r, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPut, base+"/contact", map[string]any{"fullName": "Ana Lima", "email": "ana@example.com", "phoneNumber": "+5511999"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/submit", nil, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "SUBMITTED", body["state"])
	assert.NotEmpty(t, body["receipt"])

	w = do(t, r, http.MethodPost, base+"/submit", nil, IdempotencyKeyHeader, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SUBMITTED", decode(t, w)["state"])

	w = do(t, r, http.MethodGet, "/api/v1/wizards/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardStartRejectsMalformedInput(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/wizards", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["fields"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizards", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/livez", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", nil).Code)

	do(t, r, http.MethodGet, "/api/v1/listings/lst-1/calendar", nil)
	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staybook_test_http_requests_total")
}

func TestStatusForMapsSentinels(t *testing.T) {
	cases := map[error]int{
		domainlistings.ErrListingNotFound:     http.StatusNotFound,
		domainbooking.ErrAvailabilityConflict: http.StatusConflict,
		domainbooking.ErrConcurrentUpdate:     http.StatusConflict,
		domainbooking.ErrDegeneratePricing:    http.StatusUnprocessableEntity,
		domainbooking.ErrSubmissionFailed:     http.StatusBadGateway,
		validation.ErrInvalidMessage:          http.StatusBadRequest,
		errors.New("boom"):                    http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
