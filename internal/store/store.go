package store

import "errors"

// ErrCorruptStore is returned when the backing file exists but cannot be
// parsed. A missing file is not an error; it means an empty store.
var ErrCorruptStore = errors.New("store file is corrupt")

// Store is the persistence contract shared by the JSON file store and the
// SQLite store. Implementations flush every mutation to durable storage
// before returning; there is no write buffering and no cross-call
// transaction.
//
// The store is deliberately dumb: referential checks against the process
// catalog and user directory live in the service layer. DeleteSurvey must be
// idempotent and cascade to assignments and responses.
type Store interface {
	InsertSurvey(s *Survey) error
	GetSurvey(id string) (*Survey, error) // (nil, nil) when absent
	ListSurveys() ([]*Survey, error)
	DeleteSurvey(id string) error

	// AddAssignments unions userIDs into the survey's assignment set.
	AddAssignments(surveyID string, userIDs []string) error
	ListAssignees(surveyID string) ([]string, error)
	SurveysForUser(userID string) ([]*Survey, error)

	// UpsertResponse replaces any prior response for (SurveyID, UserID).
	UpsertResponse(r *Response) error
	// ListResponses returns a survey's responses ordered by submission time,
	// then user id.
	ListResponses(surveyID string) ([]*Response, error)

	Close() error
}
