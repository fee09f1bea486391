package domain

import "time"

type TodoStatus string

const (
	TodoStatusPending   TodoStatus = "pending"
	TodoStatusCompleted TodoStatus = "completed"
)

// Valid reports whether the status is one a client may set.
func (s TodoStatus) Valid() bool {
	return s == TodoStatusPending || s == TodoStatusCompleted
}

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// Todo is a task owned by a single user. Sentiment and Confidence are derived
// from Description and are never taken from client input.
type Todo struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Category    string
	Color       string
	Status      TodoStatus
	Sentiment   Sentiment
	Confidence  float64
	Deadline    *time.Time
	AddedOn     *time.Time
	UpdatedOn   *time.Time
}

// TodoPatch carries the optional fields of a todo update. Nil means keep the stored value.
type TodoPatch struct {
	Name        *string
	Description *string
	Category    *string
	Color       *string
	Status      *TodoStatus
	Deadline    *time.Time
}

// Apply copies every non-nil field of the patch onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
}

// SortOrder orders listed todos by deadline.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TodoFilter narrows a todo listing. Empty fields do not constrain the result.
type TodoFilter struct {
	UserID    int64
	Category  string
	Status    string
	Sentiment string
	SortOrder SortOrder
}
