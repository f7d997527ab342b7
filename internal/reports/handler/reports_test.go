package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens-backend/internal/reports/repository"
	"github.com/stocklens/stocklens-backend/pkg/database"
	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/testutil"
)

func newReportsRouter(mockDB *testutil.MockDB) *chi.Mux {
	repo := repository.NewReportsRepository(database.Wrap(mockDB.DB, logger.Nop()), 1)
	h := NewReportsHandler(repo, logger.Nop())

	r := chi.NewRouter()
	r.Get("/reports/supplier-products", h.SupplierProducts)
	r.Get("/reports/product-suppliers", h.ProductSuppliers)
	return r
}

func TestSupplierProducts_RequiresSupplierID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rec := httptest.NewRecorder()
	newReportsRouter(mockDB).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/reports/supplier-products", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSupplierProducts_OK(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery(`SELECT location, product`).
		WithArgs(1, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"location", "product", "purchase", "sales", "stock"}).
			AddRow("WAREHOUSE", "Gin", "100", "0", "80"))

	rec := httptest.NewRecorder()
	newReportsRouter(mockDB).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/reports/supplier-products?supplier_id=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WAREHOUSE")
	mockDB.ExpectationsWereMet(t)
}

func TestProductSuppliers_ParsesIDList(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery(`SELECT supplier`).
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"supplier", "purchase", "sales", "stock"}).
			AddRow("Acme Distributors", "40", "15", "25"))

	rec := httptest.NewRecorder()
	newReportsRouter(mockDB).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/reports/product-suppliers?product_id=1,2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Distributors")
	mockDB.ExpectationsWereMet(t)
}

func TestProductSuppliers_RejectsBadList(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rec := httptest.NewRecorder()
	newReportsRouter(mockDB).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/reports/product-suppliers?product_id=1,x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
