package ebay

import "net/http"

// Error categories used by eBay REST APIs.
const (
	CategoryRequest     = "REQUEST"
	CategoryBusiness    = "BUSINESS"
	CategoryApplication = "APPLICATION"
)

type knownError struct {
	kind    Kind
	status  int
	message string
}

// knownErrors maps eBay error ids to their normalized form. REST ids and
// legacy Trading API codes share one table; the ranges do not overlap.
var knownErrors = map[int]knownError{
	// OAuth / common REST errors.
	1001: {KindAuthorization, http.StatusUnauthorized, "Invalid access token"},
	1002: {KindAuthorization, http.StatusUnauthorized, "Missing access token"},
	1003: {KindAuthorization, http.StatusUnauthorized, "Token type in the Authorization header is invalid"},
	1100: {KindPermission, http.StatusForbidden, "Insufficient permissions to fulfill the request"},
	2001: {KindRateLimit, http.StatusTooManyRequests, "Too many requests"},
	2002: {KindResourceNotFound, http.StatusNotFound, "Resource not found"},
	2003: {KindServiceUnavailable, http.StatusServiceUnavailable, "Internal error"},
	2004: {KindValidation, http.StatusBadRequest, "Invalid request"},

	// Inventory API.
	25001: {KindServiceUnavailable, http.StatusInternalServerError, "A system error has occurred"},
	25002: {KindBusinessRule, http.StatusBadRequest, "A user error has occurred"},
	25003: {KindValidation, http.StatusBadRequest, "Invalid price"},
	25702: {KindResourceNotFound, http.StatusNotFound, "SKU could not be found"},
	25709: {KindValidation, http.StatusBadRequest, "Invalid value for header"},
	25710: {KindResourceNotFound, http.StatusNotFound, "The resource or entity was not found"},
	25713: {KindBusinessRule, http.StatusBadRequest, "This offer is not available"},

	// Trading API (legacy XML).
	518:      {KindRateLimit, http.StatusTooManyRequests, "Call usage limit has been reached"},
	931:      {KindAuthorization, http.StatusUnauthorized, "Auth token is invalid"},
	932:      {KindAuthorization, http.StatusUnauthorized, "Auth token is hard expired"},
	10007:    {KindServiceUnavailable, http.StatusServiceUnavailable, "Internal error to the application"},
	17470:    {KindAuthorization, http.StatusUnauthorized, "Please login again now"},
	21916984: {KindAuthorization, http.StatusUnauthorized, "Invalid IAF token"},
}

// oauthErrorKinds maps RFC 6749 error codes returned by the token endpoint.
// invalid_client is a server-side credential problem, not a per-account one,
// so it must not demote accounts to requires_reauth.
var oauthErrorKinds = map[string]Kind{
	"invalid_grant":             KindAuthorization,
	"invalid_token":             KindAuthorization,
	"unauthorized_client":       KindAuthorization,
	"access_denied":             KindPermission,
	"invalid_scope":             KindPermission,
	"insufficient_scope":        KindPermission,
	"invalid_request":           KindValidation,
	"unsupported_grant_type":    KindValidation,
	"unsupported_response_type": KindValidation,
	"temporarily_unavailable":   KindServiceUnavailable,
	"server_error":              KindServiceUnavailable,
	"invalid_client":            KindServer,
}
