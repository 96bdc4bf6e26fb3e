package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProductRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ProductRepository
	sqlDB *sql.DB
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *ProductRepositoryTestSuite) TestGetAll_Success() {
	ctx := context.Background()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "product_id", "title", "category", "created_at"}).
		AddRow(uuid.New(), "B00TEST1", "Wireless Headphones", "Electronics", createdAt).
		AddRow(uuid.New(), "B00TEST2", "Coffee Grinder", "Kitchen", createdAt)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	products, err := s.repo.GetAll(ctx)

	s.NoError(err)
	s.Len(products, 2)
	s.Equal("B00TEST1", products[0].ProductID)
	s.Equal("Wireless Headphones", products[0].Title)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByProductID_Success() {
	ctx := context.Background()
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "product_id", "title", "category", "created_at"}).
		AddRow(id, "B00TEST1", "Wireless Headphones", "Electronics", time.Now())

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE product_id = $1 ORDER BY "products"."id" LIMIT $2`)).
		WithArgs("B00TEST1", 1).
		WillReturnRows(rows)

	product, err := s.repo.GetByProductID(ctx, "B00TEST1")

	s.NoError(err)
	s.NotNil(product)
	s.Equal(id, product.ID)
	s.Equal("Electronics", product.Category)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByProductID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE product_id = $1 ORDER BY "products"."id" LIMIT $2`)).
		WithArgs("MISSING", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	product, err := s.repo.GetByProductID(ctx, "MISSING")

	s.Error(err)
	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductRepositoryTestSuite) TestGetAll_DbError() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" ORDER BY created_at DESC`)).
		WillReturnError(sql.ErrConnDone)

	products, err := s.repo.GetAll(ctx)

	s.Error(err)
	s.Nil(products)
	s.Contains(err.Error(), "failed to get products")
}
