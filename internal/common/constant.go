package common

const (
	// AuthorizationHeaderName carries the bearer access token on REST requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the JWT in the Authorization header.
	BearerPrefix = "Bearer "
)
