package shop_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/internal/shop"
	"github.com/orderdesk/orderdesk/pkg/common"
)

func TestProductInsertListDelete(t *testing.T) {
	repo := shop.NewRepository(newTestDB(t))

	p := &domain.Product{ID: common.UUIDint64(), Name: "Sneaker", Description: "white", Price: 59.9, Image: "shoe.png"}
	require.NoError(t, repo.InsertProduct(p))

	products, err := repo.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Sneaker", products[0].Name)
	require.Equal(t, "shoe.png", products[0].Image)

	image, err := repo.ProductImageByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, "shoe.png", image)

	require.NoError(t, repo.DeleteProductByID(p.ID))
	products, err = repo.ListProducts()
	require.NoError(t, err)
	require.Empty(t, products)

	// Missing product: empty image reference, no error.
	image, err = repo.ProductImageByID(p.ID)
	require.NoError(t, err)
	require.Empty(t, image)
}

func TestDeleteProductLeavesOrdersIntact(t *testing.T) {
	repo := shop.NewRepository(newTestDB(t))

	p := &domain.Product{ID: 7, Name: "Sneaker", Price: 59.9}
	require.NoError(t, repo.InsertProduct(p))
	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 10, ProductID: 7, CustomerName: "Ada", Phone: "555-0100", Status: domain.OrderPending}))
	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 11, ProductID: 7, CustomerName: "Ada", Phone: "555-0100", Status: domain.OrderRejected}))

	require.NoError(t, repo.DeleteProductByID(7))

	for _, id := range []int64{10, 11} {
		order, err := repo.GetOrder(id)
		require.NoError(t, err)
		require.EqualValues(t, 7, order.ProductID)
	}
}

func TestListOrdersWithProductsJoin(t *testing.T) {
	repo := shop.NewRepository(newTestDB(t))

	require.NoError(t, repo.InsertProduct(&domain.Product{ID: 1, Name: "Sneaker", Price: 59.9}))
	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 10, ProductID: 1, CustomerName: "Ada", Phone: "555-0100", Status: domain.OrderPending}))
	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 11, ProductID: 99, CustomerName: "Bob", Phone: "555-0101", Status: domain.OrderAccepted}))

	rows, err := repo.ListOrdersWithProducts()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	require.EqualValues(t, 11, rows[0].ID)
	require.EqualValues(t, 10, rows[1].ID)

	// Dangling reference keeps the order visible with an empty name.
	require.Empty(t, rows[0].ProductName)
	require.Equal(t, "Sneaker", rows[1].ProductName)
}

func TestFindActiveOrderExcludesRejected(t *testing.T) {
	repo := shop.NewRepository(newTestDB(t))

	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 10, ProductID: 7, Phone: "555-0100", Status: domain.OrderRejected}))

	active, err := repo.FindActiveOrder("555-0100", 7)
	require.NoError(t, err)
	require.Nil(t, active)

	require.NoError(t, repo.InsertOrder(&domain.Order{ID: 11, ProductID: 7, Phone: "555-0100", Status: domain.OrderAccepted}))
	active, err = repo.FindActiveOrder("555-0100", 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.EqualValues(t, 11, active.ID)
}

func TestPageOrders(t *testing.T) {
	repo := shop.NewRepository(newTestDB(t))

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.InsertOrder(&domain.Order{ID: i, ProductID: 1, Phone: "555-0100", Status: domain.OrderPending}))
	}

	orders, total, err := repo.PageOrders(1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, orders, 2)
	require.EqualValues(t, 5, orders[0].ID)

	orders, _, err = repo.PageOrders(3, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.EqualValues(t, 1, orders[0].ID)
}
