//go:build unit

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rokyuddin/billping-api/internal/models"

	handlers "github.com/rokyuddin/billping-api/internal/handlers/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSubscriptionService struct {
	mock.Mock
}

func (m *mockSubscriptionService) Create(
	ctx context.Context, userID string, in models.SubscriptionInput,
) (models.Subscription, error) {
	args := m.Called(ctx, userID, in)
	sub, _ := args.Get(0).(models.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionService) Get(
	ctx context.Context, userID, id string,
) (models.Subscription, error) {
	args := m.Called(ctx, userID, id)
	sub, _ := args.Get(0).(models.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionService) List(
	ctx context.Context, userID string,
) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	subs, _ := args.Get(0).([]models.Subscription)
	return subs, args.Error(1)
}

func (m *mockSubscriptionService) Update(
	ctx context.Context, userID, id string, in models.SubscriptionInput,
) (models.Subscription, error) {
	args := m.Called(ctx, userID, id, in)
	sub, _ := args.Get(0).(models.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockSubscriptionService) Summary(
	ctx context.Context, userID string,
) (models.SpendSummary, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(models.SpendSummary)
	return s, args.Error(1)
}

func newSubscriptionRouter(svc *mockSubscriptionService) *gin.Engine {
	h := handlers.NewHandler(svc)
	router := gin.New()
	api := router.Group("/api", handlers.RequireUser())
	api.POST("/subscriptions", h.Create)
	api.GET("/subscriptions", h.List)
	api.GET("/subscriptions/summary", h.Summary)
	api.GET("/subscriptions/:id", h.Get)
	api.PUT("/subscriptions/:id", h.Update)
	api.DELETE("/subscriptions/:id", h.Delete)
	return router
}

func doJSON(
	t *testing.T, router *gin.Engine, method, path, user string, body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func Test_Subscriptions_RequireIdentity(t *testing.T) {
	svc := &mockSubscriptionService{}
	router := newSubscriptionRouter(svc)

	rec := doJSON(t, router, http.MethodGet, "/api/subscriptions", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func Test_CreateSubscription(t *testing.T) {
	input := models.SubscriptionInput{
		Name:            "Netflix",
		Amount:          15.49,
		BillingCycle:    models.CycleMonthly,
		NextBillingDate: "2026-09-15",
	}

	svc := &mockSubscriptionService{}
	svc.On("Create", mock.Anything, "u1", input).
		Return(models.Subscription{ID: "sub-1", UserID: "u1", Name: "Netflix"}, nil)

	t.Cleanup(func() { svc.AssertExpectations(t) })

	router := newSubscriptionRouter(svc)
	rec := doJSON(t, router, http.MethodPost, "/api/subscriptions", "u1", input)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sub-1", got.ID)
}

func Test_CreateSubscription_InvalidBody(t *testing.T) {
	svc := &mockSubscriptionService{}
	router := newSubscriptionRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/subscriptions", "u1", gin.H{
		"name": "Netflix",
		// amount and billing_cycle missing
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func Test_GetSubscription_NotFound(t *testing.T) {
	svc := &mockSubscriptionService{}
	svc.On("Get", mock.Anything, "u1", "missing").
		Return(models.Subscription{}, models.ErrSubscriptionNotFound)

	router := newSubscriptionRouter(svc)
	rec := doJSON(t, router, http.MethodGet, "/api/subscriptions/missing", "u1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_ListSubscriptions_EmptyIsArray(t *testing.T) {
	svc := &mockSubscriptionService{}
	svc.On("List", mock.Anything, "u1").Return([]models.Subscription(nil), nil)

	router := newSubscriptionRouter(svc)
	rec := doJSON(t, router, http.MethodGet, "/api/subscriptions", "u1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func Test_DeleteSubscription(t *testing.T) {
	svc := &mockSubscriptionService{}
	svc.On("Delete", mock.Anything, "u1", "sub-1").Return(nil)

	router := newSubscriptionRouter(svc)
	rec := doJSON(t, router, http.MethodDelete, "/api/subscriptions/sub-1", "u1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_Summary(t *testing.T) {
	svc := &mockSubscriptionService{}
	svc.On("Summary", mock.Anything, "u1").Return(models.SpendSummary{
		MonthlyTotal: 28.66,
		YearlyTotal:  343.92,
		ActiveCount:  3,
		Upcoming:     []models.Subscription{},
	}, nil)

	router := newSubscriptionRouter(svc)
	rec := doJSON(t, router, http.MethodGet, "/api/subscriptions/summary", "u1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.SpendSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.ActiveCount)
	assert.InDelta(t, 28.66, got.MonthlyTotal, 0.001)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunOnce(
	ctx context.Context, trigger string,
) (models.ReminderSummary, error) {
	args := m.Called(ctx, trigger)
	s, _ := args.Get(0).(models.ReminderSummary)
	return s, args.Error(1)
}

func newReminderRouter(runner *mockRunner, secret string) *gin.Engine {
	router := gin.New()
	router.POST("/api/reminders/dispatch", handlers.NewReminderHandler(runner, secret).Dispatch)
	return router
}

func Test_Dispatch_BadSecret(t *testing.T) {
	runner := &mockRunner{}
	router := newReminderRouter(runner, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/reminders/dispatch", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	runner.AssertNotCalled(t, "RunOnce", mock.Anything, mock.Anything)
}

func Test_Dispatch_ReturnsSummary(t *testing.T) {
	runner := &mockRunner{}
	runner.On("RunOnce", mock.Anything, "http").Return(models.ReminderSummary{
		Success:    true,
		EmailsSent: 2,
		Details: models.ReminderDetails{
			EmailsSent: []models.SentReminder{
				{Subscription: "Netflix", User: "a@example.com", DaysUntil: 3},
				{Subscription: "Spotify", User: "b@example.com", DaysUntil: 1},
			},
			Errors: []models.ReminderError{},
		},
	}, nil)

	t.Cleanup(func() { runner.AssertExpectations(t) })

	router := newReminderRouter(runner, "s3cret")
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/dispatch", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.ReminderSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.EmailsSent)
	assert.Len(t, got.Details.EmailsSent, 2)
}

func Test_Dispatch_RunError(t *testing.T) {
	runner := &mockRunner{}
	runner.On("RunOnce", mock.Anything, "http").
		Return(models.ReminderSummary{}, errors.New("email delivery is not configured"))

	router := newReminderRouter(runner, "")
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/dispatch", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

type mockPushStore struct {
	mock.Mock
}

func (m *mockPushStore) SetPushSubscription(
	ctx context.Context, userID string, sub models.PushSubscription,
) error {
	args := m.Called(ctx, userID, sub)
	return args.Error(0)
}

func (m *mockPushStore) ClearPushSubscription(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newPushRouter(store *mockPushStore) *gin.Engine {
	h := handlers.NewPushHandler(store, "test-public-key")
	router := gin.New()
	router.GET("/api/push/vapid-key", h.VAPIDKey)
	api := router.Group("/api", handlers.RequireUser())
	api.POST("/push/subscribe", h.Subscribe)
	api.POST("/push/unsubscribe", h.Unsubscribe)
	return router
}

func Test_VAPIDKey_Public(t *testing.T) {
	router := newPushRouter(&mockPushStore{})

	// no identity header: the key endpoint is public
	rec := doJSON(t, router, http.MethodGet, "/api/push/vapid-key", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"publicKey":"test-public-key"}`, rec.Body.String())
}

func Test_Subscribe_StoresSubscription(t *testing.T) {
	sub := models.PushSubscription{
		Endpoint: "https://push.example/abc",
		Keys:     models.PushKeys{P256dh: "p", Auth: "a"},
	}

	store := &mockPushStore{}
	store.On("SetPushSubscription", mock.Anything, "u1", sub).Return(nil)

	t.Cleanup(func() { store.AssertExpectations(t) })

	router := newPushRouter(store)
	rec := doJSON(t, router, http.MethodPost, "/api/push/subscribe", "u1",
		gin.H{"subscription": sub})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Subscribe_MissingBody(t *testing.T) {
	store := &mockPushStore{}
	router := newPushRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/api/push/subscribe", "u1", gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "SetPushSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Unsubscribe(t *testing.T) {
	store := &mockPushStore{}
	store.On("ClearPushSubscription", mock.Anything, "u1").Return(nil)

	router := newPushRouter(store)
	rec := doJSON(t, router, http.MethodPost, "/api/push/unsubscribe", "u1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubSuggester struct {
	category string
	err      error
}

func (s *stubSuggester) Suggest(context.Context, string) (string, error) {
	return s.category, s.err
}

func Test_Categorize(t *testing.T) {
	router := gin.New()
	router.POST("/api/categorize",
		handlers.NewCategoryHandler(&stubSuggester{category: "Entertainment"}).Categorize)

	rec := doJSON(t, router, http.MethodPost, "/api/categorize", "u1", gin.H{"name": "Netflix"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"category":"Entertainment"}`, rec.Body.String())
}

func Test_Categorize_MissingName(t *testing.T) {
	router := gin.New()
	router.POST("/api/categorize",
		handlers.NewCategoryHandler(&stubSuggester{}).Categorize)

	rec := doJSON(t, router, http.MethodPost, "/api/categorize", "u1", gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
