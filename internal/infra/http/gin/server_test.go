package ginserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	bookingapp "staymarket/internal/app/handlers/booking"
	"staymarket/internal/app/middleware"
	appoutbox "staymarket/internal/app/outbox"
	"staymarket/internal/app/queries"
	authsvc "staymarket/internal/app/services/auth"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
	"staymarket/internal/infra/config"
	"staymarket/internal/infra/obs"
	"staymarket/internal/infra/security"
	"staymarket/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) (http.Handler, memory.Factory) {
	t.Helper()

	factory := memory.NewFactory()
	box := memory.NewOutbox()
	fees := pricing.DefaultPolicy("USD")
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Fees:       fees,
		Outbox:     box,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.QuoteBookingPriceQuery{}.Key(), &bookingapp.QuoteBookingPriceHandler{UoWFactory: factory, Fees: fees})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: factory})

	commandsWithMW := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queriesWithMW := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Users:      factory.UserRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}

	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth:           &AuthHandler{Service: authService},
		Me:             MeHandler{Queries: queriesWithMW},
		Booking:        BookingHandler{Commands: commandsWithMW, Queries: queriesWithMW},
		AuthMiddleware: AuthMiddleware{Service: authService}.Handle,
	})
	return server.Handler, factory
}

func seedListing(t *testing.T, factory memory.Factory, id string) {
	t.Helper()
	now := time.Now()
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          domainproperty.PropertyID(id),
		Host:        "host-1",
		Title:       "Mountain cabin",
		Location:    "Aspen",
		NightlyRate: money.Must(8700, "USD"),
		GuestLimit:  4,
		Now:         now,
	})
	require.NoError(t, err)
	prop.Approve(now)
	prop.Activate(now)
	require.NoError(t, factory.PropertyRepo.Save(t.Context(), prop))
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuestBookingFlow(t *testing.T) {
	handler, factory := newTestServer(t)
	seedListing(t, factory, "prop-1")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "ana@example.com",
		"name":     "Ana",
		"password": "long enough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	// Quote is public and matches the booked price later on.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/properties/prop-1/quote?nights=7", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote dto.BreakdownDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.Equal(t, int64(70708), quote.Total.Amount)

	booking := map[string]any{
		"property_id": "prop-1",
		"guest_name":  "Ana",
		"guest_email": "ana@example.com",
		"check_in":    "2026-09-01T00:00:00Z",
		"check_out":   "2026-09-08T00:00:00Z",
		"adults":      2,
		"payment":     "card",
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/bookings", "", booking)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/bookings", auth.Token, booking)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created bookingapp.RequestBookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.BookingID)
	require.Equal(t, "pending", created.Status)
	require.Equal(t, int64(70708), created.Price.TotalCents)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/me/bookings", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mine dto.GuestBookingClassification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine.Upcoming, 1)
	require.Empty(t, mine.Past)
	require.Equal(t, created.BookingID, mine.Upcoming[0].ID)
}

func TestQuoteRejectsHiddenListing(t *testing.T) {
	handler, factory := newTestServer(t)
	now := time.Now()
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          "prop-hidden",
		Host:        "host-1",
		Title:       "Not approved yet",
		Location:    "Aspen",
		NightlyRate: money.Must(8700, "USD"),
		GuestLimit:  2,
		Now:         now,
	})
	require.NoError(t, err)
	require.NoError(t, factory.PropertyRepo.Save(t.Context(), prop))

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/properties/prop-hidden/quote?nights=2", "", nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/properties/missing/quote", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
