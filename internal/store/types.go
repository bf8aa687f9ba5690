package store

import "time"

// Rating is a self-reported proficiency level for one skill.
type Rating string

const (
	RatingHigh   Rating = "High"
	RatingMedium Rating = "Medium"
	RatingLow    Rating = "Low"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingHigh, RatingMedium, RatingLow:
		return true
	}
	return false
}

// Survey ties a set of required skills and free-text questions to one
// business process. Surveys are immutable after creation; the only mutation
// is whole-survey deletion.
type Survey struct {
	ID             string    `json:"survey_id"`
	ProcessName    string    `json:"process"`
	RequiredSkills []string  `json:"skills"`
	Questions      []string  `json:"questions"`
	CreatedAt      time.Time `json:"created_at"`
}

// Response is one user's completed answers to one survey. At most one
// response exists per (survey, user); a resubmission replaces the previous
// one, timestamp included.
type Response struct {
	SurveyID        string            `json:"survey_id"`
	UserID          string            `json:"user_id"`
	SelectedSkills  []string          `json:"skills_selected"`
	SkillRatings    map[string]Rating `json:"skill_ratings"`
	QuestionAnswers map[string]string `json:"answers"`
	Comments        string            `json:"comments,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
}
