// Package modeldto provides data transfer objects for the REST API.
package modeldto

// RequestLink models the link creation and update payload.
type RequestLink struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResponseLink is the public projection of a link.
type ResponseLink struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResponseAdminLink is the admin projection of a link, exposing lifecycle
// fields.
type ResponseAdminLink struct {
	ID          int64  `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ResponseRedirects is the public listing envelope.
type ResponseRedirects struct {
	Redirects []ResponseLink `json:"redirects"`
}

// ResponseAdminRedirects is the admin listing envelope.
type ResponseAdminRedirects struct {
	Redirects []ResponseAdminLink `json:"redirects"`
}

// ResponseLinkMessage wraps a mutated link with a human-readable message.
type ResponseLinkMessage struct {
	Message string             `json:"message"`
	Link    *ResponseAdminLink `json:"link,omitempty"`
}

// RequestAuth models the admin authentication payload.
type RequestAuth struct {
	Password string `json:"password"`
}

// ResponseAuth models the admin authentication result.
type ResponseAuth struct {
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
}

// RequestLifecycle models the admin lifecycle action payload.
type RequestLifecycle struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
}

// ResponseSync models the reconciliation result.
type ResponseSync struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ResponseDebug models the debug endpoint payload. Environment flags are
// presence booleans only, never the configured values.
type ResponseDebug struct {
	Status     string          `json:"status"`
	TotalLinks int             `json:"total_links"`
	Env        ResponseEnvInfo `json:"environment"`
}

// ResponseEnvInfo reports which optional configuration is present.
type ResponseEnvInfo struct {
	HasDatabaseDSN   bool `json:"has_database_dsn"`
	HasDispatchURL   bool `json:"has_dispatch_url"`
	HasDeployHookURL bool `json:"has_deploy_hook_url"`
}

// ResponseError is the uniform error envelope.
type ResponseError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
