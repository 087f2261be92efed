package dto

import "github.com/noah-isme/grading-assistant/internal/models"

// DraftValueRequest carries the raw value typed by the grader for one draft field.
type DraftValueRequest struct {
	Value *string `json:"value" binding:"required"`
}

// CopyToGroupRequest copies a grade or comment onto the other members of a group.
type CopyToGroupRequest struct {
	Field string `json:"field" binding:"required,oneof=grade comment"`
	Value string `json:"value"`
}

// CopyToGroupResponse is the session state plus the number of students that received the value.
type CopyToGroupResponse struct {
	Copied int                 `json:"copied"`
	State  models.SessionState `json:"state"`
}
