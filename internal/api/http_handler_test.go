package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"retail-sales-analytics/internal/domain"
	"retail-sales-analytics/internal/report"
)

// MockReportSource is a mock implementation of ReportSource.
type MockReportSource struct {
	mock.Mock
}

func (m *MockReportSource) Reports(ctx context.Context) (*report.Set, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Set), args.Error(1)
}

func sampleSet() *report.Set {
	day := time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)
	return report.Compute([]domain.SaleFact{
		{
			SaleID: 1, SaleDate: day, Quantity: 2, TotalAmount: decimal.RequireFromString("1800.00"),
			ProductName: "Laptop", CategoryName: "Electronics",
			Customer: &domain.CustomerRef{ID: 1, LastName: "Martin", FirstName: "Claire", LoyaltyTier: domain.TierLoyal},
		},
		{
			SaleID: 2, SaleDate: day, Quantity: 1, TotalAmount: decimal.RequireFromString("9.99"),
			ProductName: "Tea", CategoryName: "Food",
		},
		{
			SaleID: 3, SaleDate: day, Quantity: 3, TotalAmount: decimal.RequireFromString("60.00"),
			ProductName: "Jeans", CategoryName: "Clothing",
			Customer: &domain.CustomerRef{ID: 2, LastName: "Bernard", FirstName: "Luc", LoyaltyTier: domain.TierRegular},
		},
	})
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, source ReportSource) *httptest.Server {
	t.Helper()
	handler := NewHTTPHandler(source, zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestListReports(t *testing.T) {
	source := new(MockReportSource)
	source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
	server := setupTestChiServer(t, source)

	resp, err := http.Get(server.URL + "/api/v1/reports/")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body := decodeBody[ReportListResponse](t, resp)
	assert.Equal(t, []string{
		"summary", "by_product", "by_category", "monthly", "by_customer",
		"by_loyalty_tier", "top_products", "top_customers", "density",
	}, body.Reports)
	source.AssertExpectations(t)
}

func TestGetReport(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/by_product")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[ReportResponse](t, resp)
		assert.Equal(t, "by_product", body.Name)
		assert.Equal(t, []string{"product_name", "total_quantity", "total_revenue"}, body.Header)
		assert.Equal(t, [][]string{
			{"Laptop", "2", "1800.00"},
			{"Jeans", "3", "60.00"},
			{"Tea", "1", "9.99"},
		}, body.Rows)
		assert.Equal(t, 3, body.TotalRows)
		source.AssertExpectations(t)
	})

	t.Run("Limit", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/by_product?limit=1")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[ReportResponse](t, resp)
		assert.Equal(t, [][]string{{"Laptop", "2", "1800.00"}}, body.Rows)
		assert.Equal(t, 3, body.TotalRows)
	})

	t.Run("Density", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/density")
		require.NoError(t, err)

		body := decodeBody[ReportResponse](t, resp)
		assert.Equal(t, 7*24, body.TotalRows)
		assert.Len(t, body.Rows, 7*24)
	})

	t.Run("NotFound", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/by_weather")
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody[ErrorResponse](t, resp)
		assert.Contains(t, body.Error, "by_weather")
	})

	for _, tc := range []struct {
		name  string
		limit string
	}{
		{"InvalidLimitFormat", "abc"},
		{"LimitTooSmall", "0"},
		{"LimitTooLarge", "1001"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			source := new(MockReportSource)
			server := setupTestChiServer(t, source)

			resp, err := http.Get(server.URL + "/api/v1/reports/summary?limit=" + tc.limit)
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			source.AssertNotCalled(t, "Reports", mock.Anything)
		})
	}

	t.Run("NotReady", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(nil, report.ErrNotReady).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/summary")
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("SourceError", func(t *testing.T) {
		source := new(MockReportSource)
		source.On("Reports", mock.Anything).Return(nil, errors.New("database is locked")).Once()
		server := setupTestChiServer(t, source)

		resp, err := http.Get(server.URL + "/api/v1/reports/summary")
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeBody[ErrorResponse](t, resp)
		assert.NotContains(t, body.Error, "locked", "internal errors are not echoed to clients")
	})
}
