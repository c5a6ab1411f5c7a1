package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/ebay-seller-connect/internal/api/handlers"
	"github.com/donaldgifford/ebay-seller-connect/internal/store/mocks"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := echo.New()
	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(mocks.NewMockStore(t), nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	down := errors.New("connection refused")

	tests := []struct {
		name       string
		storeErr   error
		slotErr    error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all dependencies reachable",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "store down",
			storeErr:   down,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","failed":["store"]}`,
		},
		{
			name:       "token slot down",
			slotErr:    down,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","failed":["app_token_slot"]}`,
		},
		{
			name:       "both down",
			storeErr:   down,
			slotErr:    down,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","failed":["app_token_slot","store"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := mocks.NewMockStore(t)
			st.EXPECT().Ping(mock.Anything).Return(tt.storeErr)
			slot := pingFunc(func(context.Context) error { return tt.slotErr })

			e := echo.New()
			handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(st, map[string]handlers.Pinger{
				"app_token_slot": slot,
			}))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
