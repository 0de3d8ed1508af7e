package credential

import "time"

// Credential is a named, tenant-scoped secret bundle. The key/value map is
// opaque at this layer; encryption at rest is handled by the backing store.
type Credential struct {
	ID          string            `json:"id"`
	TenantID    string            `json:"tenantId"`
	Name        string            `json:"name"`
	ServiceType string            `json:"serviceType"`
	Credentials map[string]string `json:"credentials"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
