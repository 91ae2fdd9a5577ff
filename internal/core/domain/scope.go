package domain

// Scope identifies the warehouse a request is authorized against. It is
// supplied by the calling layer and filters every read and write.
type Scope struct {
	WarehouseID string
}

func (s Scope) Validate() error {
	if s.WarehouseID == "" {
		return Validationf("warehouse scope is required")
	}
	return nil
}
