package entity

// CallerIdentity is the authenticated actor of a request. It is built once per
// request and handed to every usecase call; nothing reads it from globals.
type CallerIdentity struct {
	UserID      string
	Role        Role
	ClientID    string
	DriverID    string
	DisplayName string
}

// IsAdmin reports whether the caller has the admin role.
func (c CallerIdentity) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// HasDriver reports whether the caller can act as a driver.
func (c CallerIdentity) HasDriver() bool {
	return c.DriverID != ""
}

// HasClient reports whether the caller can act as a client.
func (c CallerIdentity) HasClient() bool {
	return c.ClientID != ""
}

// Actor is the value written into history entries and lastUpdatedBy.
func (c CallerIdentity) Actor() string {
	if c.DriverID != "" && c.Role == RoleDriver {
		return c.DriverID
	}
	if c.UserID != "" {
		return c.UserID
	}

	return "system"
}
