package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidPath          = "INVALID_PATH"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeAccessTokenInvalid   = "ACCESS_TOKEN_INVALID"
)
