package common

const (
	// AuthorizationHeaderName carries the bearer token on protected routes.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// RequestIDHeaderName is echoed back on every response.
	RequestIDHeaderName = "X-Request-Id"

	// DateLayout is the wire format of calendar dates (birth date, expiry date).
	DateLayout = "2006-01-02"
)
