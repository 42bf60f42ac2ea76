package models

// Company represents a tenant row.
type Company struct {
	CompanyID           string `json:"companyID"` // Primary Key (e.g., UUID)
	Name                string `json:"name"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"`
	IsActive            bool   `json:"isActive"`
	AuditFields
}
