package users

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotProvisioned    = "USER_NOT_PROVISIONED"
	CodeAlreadyExists     = "USER_ALREADY_EXISTS"
	CodeEmailAlreadyInUse = "EMAIL_ALREADY_IN_USE"
	CodeForbidden         = "FORBIDDEN"
)

func validationError(field, problem string) *Error {
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: "invalid " + field,
		Details: map[string]any{field: problem},
	}
}

func notProvisioned() *Error {
	return &Error{
		Status:  404,
		Code:    CodeNotProvisioned,
		Message: "No user profile exists for the authenticated subject.",
	}
}

func alreadyExists() *Error {
	return &Error{
		Status:  409,
		Code:    CodeAlreadyExists,
		Message: "A user profile already exists for the authenticated subject.",
	}
}
