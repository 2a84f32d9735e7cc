package shop

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk/internal/domain"
)

// Repository provides the Catalog Store and Order Ledger access the
// lifecycle and the web layer need. Simple equality lookups only; no
// transactions or joins beyond the dashboard listing.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertOrder(o *domain.Order) error {
	if err := r.db.Create(o).Error; err != nil {
		return errors.Wrap(err, "insert order")
	}
	return nil
}

// FindActiveOrder returns the existing non-Rejected order for the
// (phone, productID) pair, or nil when there is none.
func (r *Repository) FindActiveOrder(phone string, productID int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.
		Where("phone = ? AND product_id = ? AND status <> ?", phone, productID, domain.OrderRejected).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query active order")
	}
	return &o, nil
}

func (r *Repository) UpdateOrderStatus(id int64, status domain.OrderStatus) error {
	res := r.db.Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("order %d not found", id)
	}
	return nil
}

// LatestOrderByPhone returns the most recently created order for the phone
// number (by id, descending), or nil when none exists.
func (r *Repository) LatestOrderByPhone(phone string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Where("phone = ?", phone).Order("id DESC").First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query latest order")
	}
	return &o, nil
}

func (r *Repository) OrderPhoneByID(id int64) (string, error) {
	var o domain.Order
	if err := r.db.Select("phone").Where("id = ?", id).First(&o).Error; err != nil {
		return "", errors.Wrapf(err, "query order %d", id)
	}
	return o.Phone, nil
}

func (r *Repository) GetOrder(id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Where("id = ?", id).First(&o).Error; err != nil {
		return nil, errors.Wrapf(err, "query order %d", id)
	}
	return &o, nil
}

func (r *Repository) InsertProduct(p *domain.Product) error {
	if err := r.db.Create(p).Error; err != nil {
		return errors.Wrap(err, "insert product")
	}
	return nil
}

// DeleteProductByID removes the product row only. Orders referencing the
// id are left untouched; dangling references are tolerated.
func (r *Repository) DeleteProductByID(id int64) error {
	if err := r.db.Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	return nil
}

func (r *Repository) GetProduct(id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query product %d", id)
	}
	return &p, nil
}

func (r *Repository) ProductImageByID(id int64) (string, error) {
	p, err := r.GetProduct(id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return p.Image, nil
}

func (r *Repository) ListProducts() ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// OrderRow is the dashboard listing: an order joined with its product name.
// ProductName is empty for dangling references.
type OrderRow struct {
	ID           int64              `json:"id"`
	ProductID    int64              `json:"product_id"`
	ProductName  string             `json:"product_name"`
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone"`
	Status       domain.OrderStatus `json:"status"`
}

// ListOrdersWithProducts joins orders against the catalog for the admin
// dashboard. LEFT JOIN keeps orders whose product has been deleted.
func (r *Repository) ListOrdersWithProducts() ([]OrderRow, error) {
	var rows []OrderRow
	err := r.db.Model(&domain.Order{}).
		Select("orders.id, orders.product_id, products.name AS product_name, orders.customer_name, orders.phone, orders.status").
		Joins("LEFT JOIN products ON products.id = orders.product_id").
		Order("orders.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders with products")
	}
	return rows, nil
}

// PageOrders returns a page of orders, newest first, for the admin API.
func (r *Repository) PageOrders(page, pageSize int) ([]domain.Order, int64, error) {
	base := r.db.Model(&domain.Order{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	var orders []domain.Order
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "page orders")
	}
	return orders, total, nil
}

// PageProducts returns a page of products for the admin API.
func (r *Repository) PageProducts(page, pageSize int) ([]domain.Product, int64, error) {
	base := r.db.Model(&domain.Product{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var products []domain.Product
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return nil, 0, errors.Wrap(err, "page products")
	}
	return products, total, nil
}
