package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentRecord is a completed document run stored in MongoDB. The rendered
// Markdown lives in object storage under ObjectKey.
type DocumentRecord struct {
	ID           primitive.ObjectID `json:"id"           bson:"_id,omitempty"`
	UserID       string             `json:"user_id"      bson:"user_id"`
	RunID        string             `json:"run_id"       bson:"run_id"`
	DocType      string             `json:"doc_type"     bson:"doc_type"`
	Objective    string             `json:"objective"    bson:"objective"`
	Requirements string             `json:"requirements" bson:"requirements"`
	Tasks        []TaskSpec         `json:"tasks"        bson:"tasks"`
	MaxItems     int                `json:"max_items"    bson:"max_items"`
	Sections     []DocumentSection  `json:"sections"     bson:"sections"`
	Sources      []SearchResult     `json:"sources"      bson:"sources"`
	Background   string             `json:"background"   bson:"background"`
	ModelUsed    string             `json:"model_used"   bson:"model_used"`
	ObjectKey    string             `json:"object_key"   bson:"object_key"`
	CreatedAt    time.Time          `json:"created_at"   bson:"created_at"`
}

// CreateDocumentRequest is the JSON body for POST /api/documents.
type CreateDocumentRequest struct {
	DocType      DocType `json:"doc_type"`
	Objective    string  `json:"objective"`
	Requirements string  `json:"requirements"`
	WebSearch    bool    `json:"websearch"`
	FetchPages   bool    `json:"fetch_pages"`
	Model        string  `json:"model"`
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// ExtractRequest is the JSON body for POST /api/extract.
type ExtractRequest struct {
	Objective string `json:"objective"`
	Task      string `json:"task"`
	Text      string `json:"text"`
}

// PlanRequest is the JSON body for POST /api/plan.
type PlanRequest struct {
	DocType      DocType `json:"doc_type"`
	Objective    string  `json:"objective"`
	Requirements string  `json:"requirements"`
}

// Message is one chat turn exchanged with the API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the JSON body for POST /api/ask. History is the transcript
// returned by the previous turn, if any.
type AskRequest struct {
	Question  string    `json:"question"`
	WebSearch bool      `json:"websearch"`
	History   []Message `json:"history"`
}

// AskResponse carries the answer and the extended transcript.
type AskResponse struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
	History []Message      `json:"history"`
}

// NotesRequest is the JSON body for POST /api/notes.
type NotesRequest struct {
	Transcript string `json:"transcript"`
}

// CodeReviewRequest is the JSON body for POST /api/review. The code is only
// read by the model, never run.
type CodeReviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}
