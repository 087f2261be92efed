package models

import "time"

// AssignmentSummary is one row of the course assignment list.
type AssignmentSummary struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	DueAt             *time.Time `json:"dueAt,omitempty"`
	PointsPossible    *float64   `json:"pointsPossible"`
	Published         bool       `json:"published"`
	GroupCategoryID   *int64     `json:"groupCategoryId,omitempty"`
	SubmissionCount   int        `json:"submissionCount"`
	GradedCount       int        `json:"gradedCount"`
	NeedsGradingCount int        `json:"needsGradingCount"`
}

// AssignmentDetails is the configured assignment with its rubric.
type AssignmentDetails struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	DueAt           *time.Time        `json:"dueAt,omitempty"`
	PointsPossible  *float64          `json:"pointsPossible"`
	GradingType     string            `json:"gradingType"`
	GroupCategoryID *int64            `json:"groupCategoryId,omitempty"`
	HTMLURL         string            `json:"htmlUrl,omitempty"`
	Rubric          []RubricCriterion `json:"rubric"`
}

// RubricCriterion is one row of an assignment rubric.
type RubricCriterion struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	LongText    string         `json:"longDescription,omitempty"`
	Points      float64        `json:"points"`
	Ratings     []RubricRating `json:"ratings"`
}

// RubricRating is a selectable rating of a rubric criterion.
type RubricRating struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}
