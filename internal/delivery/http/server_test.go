package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"megafast/config"
	"megafast/internal/delivery/http/middleware"
	"megafast/internal/delivery/http/response"
	"megafast/internal/delivery/http/router"
	"megafast/internal/delivery/http/router/handler"
	"megafast/internal/domain/entity"
	"megafast/internal/infra/auth"
	"megafast/internal/infra/persistence"
	"megafast/internal/infra/persistence/memory"
	"megafast/internal/infra/qrcode"
	mocksvc "megafast/internal/mocks/service"
	"megafast/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t    *testing.T
	echo *echo.Echo
}

type envelope struct {
	Success bool                `json:"success"`
	Code    int                 `json:"code"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access"
	cfg.SecretKey.Refresh = "test-refresh"
	cfg.Auth = &config.AuthConfig{Provider: "local", BcryptCost: 4}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos := persistence.NewMemory(memory.NewStore())
	jwtService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	hasher := auth.NewBcryptHasher(cfg)

	publisher := mocksvc.NewMockEventPublisher(t)
	publisher.EXPECT().PublishShipmentEvent(mock.Anything, mock.Anything).Return(nil).Maybe()

	sessions := impl.NewSessionService(repos.Users, hasher, jwtService, logger)
	notifications := impl.NewNotificationService(repos.Notifications, repos.Users, nil, logger)
	drivers := impl.NewDriverService(repos.TxManager, repos.Shipments, repos.Batches, repos.Watcher, publisher, logger)
	shipments := impl.NewShipmentService(repos.TxManager, repos.Shipments, qrcode.NewLabelGenerator(128, "M"), publisher, logger)
	batches := impl.NewBatchService(repos.TxManager, repos.Shipments, repos.Batches, repos.Users, notifications, publisher, logger)

	ctx := context.Background()
	require.NoError(t, sessions.EnsureAdmin(ctx, "admin@megafast.tn", "admin-pass"))
	for _, u := range []*entity.UserProfile{
		{ID: "client-user", Email: "client@shop.tn", DisplayName: "Shop", Role: entity.RoleClient, ClientID: "client-1"},
		{ID: "driver-user", Email: "driver@megafast.tn", DisplayName: "Sami", Role: entity.RoleDriver, DriverID: "driver-1"},
	} {
		hash, err := hasher.Hash("secret-pass")
		require.NoError(t, err)
		u.PasswordHash = hash
		require.NoError(t, repos.Users.Create(ctx, u))
	}

	e := NewEcho(&config.Config{}, logger)
	router.NewRouter(router.RouterParams{
		SessionHandler:      handler.NewSessionHandler(sessions, logger),
		DriverHandler:       handler.NewDriverHandler(drivers, logger),
		ShipmentHandler:     handler.NewShipmentHandler(shipments, logger),
		BatchHandler:        handler.NewBatchHandler(batches, logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtService, sessions, logger),
	}).RegisterRoutes(e)

	return &testAPI{t: t, echo: e}
}

func (api *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	api.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(api.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func (api *testAPI) login(email, password string) string {
	api.t.Helper()

	rec, env := api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(api.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(api.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(api.t, out.AccessToken)

	return out.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

func newShipmentBody(city string, amount float64) map[string]any {
	return map[string]any{
		"paymentMode":     "cod",
		"amount":          amount,
		"pickupAddress":   "12 rue de Marseille",
		"pickupCity":      "Tunis",
		"deliveryAddress": "5 avenue Habib Bourguiba",
		"deliveryCity":    city,
		"recipientName":   "Amira",
		"recipientPhone":  "+21620000000",
	}
}

func TestServer_HealthCheck(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestServer_AuthErrors(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodGet, "/driver/shipments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = api.do(http.MethodGet, "/driver/shipments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "client@shop.tn", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	clientToken := api.login("client@shop.tn", "secret-pass")
	rec, env = api.do(http.MethodGet, "/driver/shipments", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestServer_ValidationFailed(t *testing.T) {
	api := newTestAPI(t)
	clientToken := api.login("client@shop.tn", "secret-pass")

	body := newShipmentBody("Sfax", 10)
	delete(body, "recipientName")
	rec, env := api.do(http.MethodPost, "/shipments", clientToken, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "recipientName is required")

	rec, env = api.do(http.MethodGet, "/shipments?status=lost", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_BatchDeliveryFlow(t *testing.T) {
	api := newTestAPI(t)
	clientToken := api.login("client@shop.tn", "secret-pass")
	adminToken := api.login("admin@megafast.tn", "admin-pass")
	driverToken := api.login("driver@megafast.tn", "secret-pass")

	var ids []string
	for _, city := range []string{"Sfax", "Sousse"} {
		rec, env := api.do(http.MethodPost, "/shipments", clientToken, newShipmentBody(city, 40))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		s := decode[entity.Shipment](t, env)
		assert.Equal(t, entity.ShipmentStatusCreated, s.Status)
		assert.Equal(t, "client-1", s.ClientID)
		ids = append(ids, s.ID)
	}

	rec, env := api.do(http.MethodPost, "/admin/batches", adminToken, map[string]any{
		"code": "B-001", "driverId": "driver-1", "shipmentIds": ids,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	batch := decode[entity.BatchSummary](t, env)
	assert.Equal(t, 2, batch.TotalShipments)

	rec, env = api.do(http.MethodGet, "/driver/batches?status=planned", driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.BatchSummary](t, env), 1)

	rec, env = api.do(http.MethodPost, "/driver/batches/"+batch.ID+"/complete", driverToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "BATCH_INCOMPLETE", env.Error.Code)

	rec, _ = api.do(http.MethodPost, "/driver/batches/"+batch.ID+"/start", driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = api.do(http.MethodGet, "/driver/shipments?status=in_transit", driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*entity.Shipment](t, env), 2)

	rec, env = api.do(http.MethodPatch, "/driver/shipments/"+ids[0]+"/status", driverToken, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entity.ShipmentStatusDelivered, decode[entity.Shipment](t, env).Status)

	rec, _ = api.do(http.MethodPatch, "/driver/shipments/"+ids[1]+"/status", driverToken, map[string]string{"status": "returned", "notes": "absent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = api.do(http.MethodPost, "/driver/batches/"+batch.ID+"/complete", driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[entity.BatchSummary](t, env)
	assert.Equal(t, entity.BatchStatusCompleted, done.Status)
	assert.Equal(t, 1, done.DeliveredShipments)
	assert.Equal(t, 1, done.ReturnedShipments)
	assert.InDelta(t, 50.0, done.DeliveryRate, 0.001)

	rec, env = api.do(http.MethodGet, "/batches/"+batch.ID, driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.BatchStatusCompleted, decode[entity.BatchSummary](t, env).Status)

	rec, env = api.do(http.MethodGet, "/notifications?unread=true", driverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode[[]entity.Notification](t, env)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationKindBatchAssigned, notifications[0].Kind)
}

func TestServer_ShipmentLabel(t *testing.T) {
	api := newTestAPI(t)
	clientToken := api.login("client@shop.tn", "secret-pass")

	_, env := api.do(http.MethodPost, "/shipments", clientToken, newShipmentBody("Sfax", 15))
	s := decode[entity.Shipment](t, env)

	rec, _ := api.do(http.MethodGet, "/shipments/"+s.ID+"/label", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, env = api.do(http.MethodGet, "/shipments/track/"+s.Barcode, clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.ID, decode[entity.Shipment](t, env).ID)
}

func TestServer_WatchShipments(t *testing.T) {
	api := newTestAPI(t)
	driverToken := api.login("driver@megafast.tn", "secret-pass")

	srv := httptest.NewServer(api.echo)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/driver/shipments/watch?access_token="+driverToken, nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get(echo.HeaderContentType))

	reader := bufio.NewReader(res.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: shipments\n", event)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: []\n", data)
}
