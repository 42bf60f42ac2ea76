package domain

// Company represents a tenant. Every currency and dated rate belongs to
// exactly one company; operations never cross company boundaries.
type Company struct {
	CompanyID           string `json:"companyID"` // Primary Key (e.g., UUID)
	Name                string `json:"name"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"` // Recorded code of the default currency ("" until the first currency is added)
	IsActive            bool   `json:"isActive"`
	AuditFields
}
