package models

// ConnectionSettings are the persisted settings used to reach the remote gradebook.
type ConnectionSettings struct {
	BaseURL      string            `json:"baseUrl,omitempty" validate:"omitempty,url"`
	CourseID     string            `json:"courseId,omitempty" validate:"omitempty,numeric"`
	AssignmentID string            `json:"assignmentId,omitempty" validate:"omitempty,numeric"`
	AccessToken  string            `json:"accessToken,omitempty"`
	KeyBindings  map[string]string `json:"keyBindings,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// PublicConnectionSettings is the redacted view: the token is reduced to its presence.
type PublicConnectionSettings struct {
	BaseURL      string            `json:"baseUrl"`
	CourseID     string            `json:"courseId"`
	AssignmentID string            `json:"assignmentId"`
	HasToken     bool              `json:"hasToken"`
	KeyBindings  map[string]string `json:"keyBindings"`
}

// Public returns the redacted view of the settings.
func (s ConnectionSettings) Public() PublicConnectionSettings {
	bindings := make(map[string]string, len(s.KeyBindings))
	for action, key := range s.KeyBindings {
		bindings[action] = key
	}
	return PublicConnectionSettings{
		BaseURL:      s.BaseURL,
		CourseID:     s.CourseID,
		AssignmentID: s.AssignmentID,
		HasToken:     s.AccessToken != "",
		KeyBindings:  bindings,
	}
}
