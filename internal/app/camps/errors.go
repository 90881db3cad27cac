package camps

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
	CodeValidation          = "VALIDATION_ERROR"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeCampNotFound        = "CAMP_NOT_FOUND"
	CodeDayNotFound         = "DAY_NOT_FOUND"
	CodeRegistrationIDTaken = "REGISTRATION_ID_CONFLICT"
	CodeCampIDTaken         = "CAMP_ID_CONFLICT"
)

func validationError(field, problem string) *Error {
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: "invalid " + field,
		Details: map[string]any{field: problem},
	}
}

func alreadyRegistered() *Error {
	return &Error{Status: 409, Code: CodeAlreadyRegistered, Message: "user is already registered for this camp"}
}
