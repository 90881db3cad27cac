package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// UserID is an internal identifier for a user record.
type UserID string

// CampID is an internal identifier for a camp record.
type CampID string

// CampDayID identifies a day within its parent camp.
type CampDayID string

// RegistrationID is an internal identifier for a registration record.
type RegistrationID string
