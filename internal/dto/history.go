package dto

// HistoryQuery filters the grading history listing.
type HistoryQuery struct {
	AssignmentID string `form:"assignmentId" binding:"omitempty,numeric"`
	UserID       int64  `form:"userId" binding:"omitempty,gt=0"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}
