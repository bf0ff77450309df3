package model

import "time"

// ConversationMode is the dispatcher's routing state for a session.
type ConversationMode string

const (
	ModeMainMenu          ConversationMode = "main_menu"
	ModeSymptomAssessment ConversationMode = "symptom_assessment"
	ModeKnowledgeQuery    ConversationMode = "knowledge_query"
	ModeEmotionalSupport  ConversationMode = "emotional_support"
	ModeEnded             ConversationMode = "ended"
)

// ChatRequest is the body of POST /v1/chat and of WebSocket chat frames.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is returned for every routed user turn.
type ChatResponse struct {
	SessionID string           `json:"sessionId"`
	Response  string           `json:"response"`
	Status    string           `json:"status"`
	Flow      ConversationMode `json:"flow"`
	// MRSScore is set when a symptom assessment completed during this turn.
	MRSScore *int `json:"mrsScore,omitempty"`
}

// ConversationMessage is one persisted chat turn.
type ConversationMessage struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	SessionID string    `json:"sessionId" bson:"session_id"`
	UserID    string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	Role      string    `json:"role" bson:"role"` // "user" or "assistant"
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// SessionMeta is the cached routing state for a chat session.
type SessionMeta struct {
	SessionID   string           `json:"sessionId"`
	UserID      string           `json:"userId,omitempty"`
	CurrentFlow ConversationMode `json:"currentFlow"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
