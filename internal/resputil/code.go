package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest      ErrorCode = 40001
	InvalidNumericInput ErrorCode = 40002

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// User is not allowed to access the resource
	UserNotAllowed ErrorCode = 40301
	TenantMismatch ErrorCode = 40303

	NotFound ErrorCode = 40401

	// Workflow
	InvalidTransition ErrorCode = 40901
	Conflict          ErrorCode = 40902

	ServiceError ErrorCode = 50001

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
