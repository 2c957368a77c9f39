// Package models defines the domain types for the organizer.
package models

import "time"

// Kind names a rank-ordered record collection.
type Kind string

// Record collections. Each one carries its own independent rank sequence.
const (
	KindItem Kind = "items"
	KindNote Kind = "notes"
)

// MaxLinks is the number of titled links a record can hold.
const MaxLinks = 3

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	return k == KindItem || k == KindNote
}

// Link is a titled URL attached to a record.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Record is a persisted item or note.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Links     []Link    `json:"links"`
	Tasks     []Task    `json:"tasks,omitempty"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the title, or a placeholder when it is blank.
func (r *Record) DisplayTitle() string {
	if r.Title == "" {
		return "Untitled"
	}
	return r.Title
}

// Key, GetRank, SetRank and Created satisfy ranking.Ranked.
func (r *Record) Key() string { return r.ID }
func (r *Record) GetRank() int { return r.Rank }
func (r *Record) SetRank(rank int) { r.Rank = rank }
func (r *Record) Created() time.Time { return r.CreatedAt }

// Task is a free-text to-do attached to a record. All tasks share one
// rank sequence: the global tasks list.
type Task struct {
	ID          string    `json:"id"`
	RecordID    string    `json:"record_id"`
	RecordTitle string    `json:"record_title,omitempty"`
	Text        string    `json:"text"`
	Rank        int       `json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Task) Key() string { return t.ID }
func (t *Task) GetRank() int { return t.Rank }
func (t *Task) SetRank(rank int) { t.Rank = rank }
func (t *Task) Created() time.Time { return t.CreatedAt }

// Draft holds the editable fields of a record until they are saved.
type Draft struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Links []Link   `json:"links"`
	Tasks []string `json:"tasks,omitempty"`
}
