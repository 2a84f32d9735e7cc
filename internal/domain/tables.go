package domain

var Tables = []interface{}{
	// Catalog
	&Product{},
	// Orders
	&Order{},
}
