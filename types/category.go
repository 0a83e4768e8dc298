package types

// Category is the coarse asset class derived from an asset's service type.
// Categorization is a pure function of the service type and stable for the
// lifetime of the asset.
type Category string

const (
	CategoryVM      Category = "vm"
	CategoryDB      Category = "db"
	CategoryStorage Category = "storage"
)

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVM, CategoryDB, CategoryStorage:
		return true
	}
	return false
}
