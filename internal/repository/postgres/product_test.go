package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:             "p-1",
		Name:           "Ceramic Mug",
		WholesalePrice: 4.50,
		RetailPrice:    9.99,
		Stock:          120,
		Category:       "Kitchen",
		Status:         domain.ProductActive,
		Description:    "A mug",
		OwnerID:        "u-1234",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func productCols() []string {
	return []string{
		"id", "name", "wholesale_price", "retail_price", "stock",
		"category", "status", "image", "description", "weight",
		"dimensions", "owner_id", "created_at", "updated_at",
	}
}

func productRow(p *domain.Product, total int) *pgxmock.Rows {
	return pgxmock.NewRows(append(productCols(), "total_count")).AddRow(
		p.ID, p.Name, p.WholesalePrice, p.RetailPrice, p.Stock,
		p.Category, p.Status, p.Image, p.Description, p.Weight,
		p.Dimensions, p.OwnerID, p.CreatedAt, p.UpdatedAt,
		total,
	)
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.WholesalePrice, p.RetailPrice, p.Stock,
			p.Category, p.Status, p.Image, p.Description, p.Weight,
			p.Dimensions, p.OwnerID, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_OwnerScoped(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	// A product belonging to another owner is invisible.
	mock.ExpectQuery("SELECT .+ FROM products WHERE owner_id = .+ AND id =").
		WithArgs("other-owner", "p-1").
		WillReturnRows(pgxmock.NewRows(productCols()))

	_, err := repo.GetByID(context.Background(), "other-owner", "p-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_Filters(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("u-1234", "Kitchen", "%mug%", 10, 0).
		WillReturnRows(productRow(p, 1))

	products, total, err := repo.List(context.Background(), "u-1234", domain.ProductFilters{
		Category: "Kitchen",
		Search:   "mug",
	}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_AllDisablesFilter(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	// "all" must not appear as a bind argument.
	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("u-1234", 10, 0).
		WillReturnRows(pgxmock.NewRows(append(productCols(), "total_count")))

	products, total, err := repo.List(context.Background(), "u-1234", domain.ProductFilters{
		Category: "all",
		Status:   "all",
	}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.WholesalePrice, p.RetailPrice, p.Stock, p.Category,
			p.Status, p.Image, p.Description, p.Weight, p.Dimensions,
			pgxmock.AnyArg(), p.OwnerID, p.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), p)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_CountByCategory(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM products").
		WithArgs("u-1234", "Kitchen").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByCategory(context.Background(), "u-1234", "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Count(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM products").
		WithArgs("u-1234").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.Count(context.Background(), "u-1234")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Categories(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT DISTINCT category FROM products").
		WithArgs("u-1234").
		WillReturnRows(pgxmock.NewRows([]string{"category"}).
			AddRow("Bags").
			AddRow("Kitchen"))

	categories, err := repo.Categories(context.Background(), "u-1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bags", "Kitchen"}, categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}
