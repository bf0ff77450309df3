package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"thalia/internal/cache"
	"thalia/internal/flow"
	"thalia/internal/model"
	"thalia/internal/oracle"
	"thalia/internal/prompt"
	"thalia/internal/repository"
)

const welcomeMessage = `Welcome to the Menopause Health Support System!

I can help you with:
1. Symptom Assessment - Evaluate your menopause symptoms
2. Knowledge Queries - Answer questions about menopause
3. Emotional Support - Provide psychological support

What would you like help with today?`

const outOfScopeMessage = `I'm specifically designed to help with menopause-related health concerns. Your question seems to be outside my area of expertise.

I can help you with:
- Understanding menopause symptoms
- Symptom assessment and evaluation
- Information about treatments and lifestyle changes
- Emotional support during menopause transition

Is there anything about menopause I can help you with?`

const assessmentIntro = "I understand you want to assess your symptoms. Let me help you with that.\n\n"

// ErrSessionNotFound is returned for lookups on unknown chat sessions.
var ErrSessionNotFound = errors.New("session not found")

// ChatSession is one user's conversation state. Turns within a session are
// serialized by the session mutex; concurrent requests for the same session
// wait rather than interleave.
type ChatSession struct {
	ID         string
	UserID     string
	Mode       model.ConversationMode
	Assessment *flow.Flow

	mu sync.Mutex
}

// RouterService dispatches each user turn to a conversational mode: the MRS
// assessment flow, knowledge answers, emotional support, or the main menu.
// Each session owns its own assessment flow instance; nothing is shared
// between sessions.
type RouterService struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession

	intents          *IntentClassifier
	templates        prompt.Renderer
	assessmentOracle oracle.Generator
	knowledgeOracle  oracle.Generator
	supportOracle    oracle.Generator

	conversations repository.ConversationRepo
	assessments   repository.AssessmentRepo
	sessionCache  cache.SessionCache
}

// NewRouterService creates the dispatcher.
func NewRouterService(
	intents *IntentClassifier,
	templates prompt.Renderer,
	assessmentOracle oracle.Generator,
	knowledgeOracle oracle.Generator,
	supportOracle oracle.Generator,
	conversations repository.ConversationRepo,
	assessments repository.AssessmentRepo,
	sessionCache cache.SessionCache,
) *RouterService {
	return &RouterService{
		sessions:         make(map[string]*ChatSession),
		intents:          intents,
		templates:        templates,
		assessmentOracle: assessmentOracle,
		knowledgeOracle:  knowledgeOracle,
		supportOracle:    supportOracle,
		conversations:    conversations,
		assessments:      assessments,
		sessionCache:     sessionCache,
	}
}

func (s *RouterService) getOrCreateSession(sessionID, userID string) *ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := &ChatSession{
		ID:         sessionID,
		UserID:     userID,
		Mode:       model.ModeMainMenu,
		Assessment: flow.New(s.assessmentOracle, s.templates),
	}
	s.sessions[sessionID] = sess
	return sess
}

// Session returns an existing chat session.
func (s *RouterService) Session(sessionID string) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Progress returns the assessment progress for a session.
func (s *RouterService) Progress(sessionID string) (model.ProgressReport, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return model.ProgressReport{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Assessment.Progress(), nil
}

// Reports returns the user's completed assessment reports, newest first.
func (s *RouterService) Reports(ctx context.Context, userID string) ([]*model.AssessmentReport, error) {
	if s.assessments == nil {
		return nil, nil
	}
	return s.assessments.GetByUser(ctx, userID)
}

// History returns the persisted conversation for a session.
func (s *RouterService) History(ctx context.Context, sessionID string) ([]*model.ConversationMessage, error) {
	if s.conversations == nil {
		return nil, nil
	}
	return s.conversations.GetBySession(ctx, sessionID)
}

// Route processes one user turn. An empty sessionID starts a new session.
// The whole turn runs synchronously; the reply is final when Route returns.
func (s *RouterService) Route(ctx context.Context, userID, sessionID, userInput string) *model.ChatResponse {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	sess := s.getOrCreateSession(sessionID, userID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return s.respond(ctx, sess, welcomeMessage, "success", model.ModeMainMenu)
	}

	s.recordMessage(ctx, sess, "user", userInput)

	if resp := s.handleGlobalCommand(ctx, sess, userInput); resp != nil {
		return resp
	}

	var resp *model.ChatResponse
	switch sess.Mode {
	case model.ModeSymptomAssessment:
		resp = s.handleAssessment(ctx, sess, userInput, "")
	case model.ModeKnowledgeQuery:
		resp = s.handleKnowledgeQuery(ctx, sess, userInput)
	case model.ModeEmotionalSupport:
		resp = s.handleEmotionalSupport(ctx, sess, userInput)
	default:
		resp = s.handleMainMenu(ctx, sess, userInput)
	}
	return resp
}

// handleGlobalCommand intercepts commands that work in every mode. Returns
// nil when the input is not a command.
func (s *RouterService) handleGlobalCommand(ctx context.Context, sess *ChatSession, userInput string) *model.ChatResponse {
	switch strings.ToLower(userInput) {
	case "help", "?", "start", "restart", "main menu", "home":
		s.resetSession(sess)
		return s.respond(ctx, sess, welcomeMessage, "success", model.ModeMainMenu)
	case "quit", "exit", "goodbye", "bye":
		s.resetSession(sess)
		return s.respond(ctx, sess,
			"Thank you for using the Menopause Health Support System! Take care!",
			"success", model.ModeEnded)
	}
	return nil
}

func (s *RouterService) handleMainMenu(ctx context.Context, sess *ChatSession, userInput string) *model.ChatResponse {
	intent := s.intents.Classify(ctx, userInput)
	log.Printf("session %s: classified intent %s", sess.ID, intent)

	switch intent {
	case IntentOutOfScope:
		return s.respond(ctx, sess, outOfScopeMessage, "success", model.ModeMainMenu)
	case IntentSymptomAssessment:
		sess.Mode = model.ModeSymptomAssessment
		return s.handleAssessment(ctx, sess, userInput, "")
	case IntentEmotionalSupport:
		sess.Mode = model.ModeEmotionalSupport
		return s.handleEmotionalSupport(ctx, sess, userInput)
	default:
		sess.Mode = model.ModeKnowledgeQuery
		return s.handleKnowledgeQuery(ctx, sess, userInput)
	}
}

// handleAssessment forwards one turn into the MRS flow and interprets its
// structured outcome for the conversation.
func (s *RouterService) handleAssessment(ctx context.Context, sess *ChatSession, userInput, intro string) *model.ChatResponse {
	turn := sess.Assessment.ProcessInput(ctx, userInput)

	switch turn.Status {
	case model.StatusScoringCompleted:
		s.saveReport(ctx, sess, &turn)
		message := intro + turn.Message
		if turn.MRSScore != nil {
			message += "\n\nYour MRS Score: " + strconv.Itoa(*turn.MRSScore)
		}
		message += "\n\nDo you have any other questions? I can provide information about menopause or offer emotional support."
		sess.Mode = model.ModeKnowledgeQuery
		resp := s.respond(ctx, sess, message, "success", model.ModeKnowledgeQuery)
		resp.MRSScore = turn.MRSScore
		return resp

	case model.StatusExitConfirmed:
		sess.Mode = model.ModeMainMenu
		if turn.OriginalQuestion != "" {
			return s.rerouteOriginalQuestion(ctx, sess, turn.Message, turn.OriginalQuestion)
		}
		return s.respond(ctx, sess, turn.Message+"\n\n"+welcomeMessage, "success", model.ModeMainMenu)

	case model.StatusError:
		message := turn.Message + "\n\nLet's try again. Please describe your symptoms."
		return s.respond(ctx, sess, intro+message, "error", model.ModeSymptomAssessment)

	default:
		// asking_next_symptom, clarification_needed, zero/exit confirmation,
		// continue_assessment: surface the flow's message and keep routing
		// turns into the assessment.
		return s.respond(ctx, sess, intro+turn.Message, "success", model.ModeSymptomAssessment)
	}
}

// rerouteOriginalQuestion answers the utterance that originally pulled the
// user out of the assessment, in whichever mode fits it.
func (s *RouterService) rerouteOriginalQuestion(ctx context.Context, sess *ChatSession, exitMessage, original string) *model.ChatResponse {
	log.Printf("session %s: processing original question after exit", sess.ID)

	intent := s.intents.Classify(ctx, original)
	if intent == IntentEmotionalSupport {
		sess.Mode = model.ModeEmotionalSupport
		resp := s.handleEmotionalSupport(ctx, sess, original)
		resp.Response = exitMessage + "\n\nRegarding your original question:\n" + resp.Response
		return resp
	}

	sess.Mode = model.ModeKnowledgeQuery
	resp := s.answerKnowledge(ctx, sess, original)
	resp.Response = exitMessage + "\n\nRegarding your original question:\n" + resp.Response
	return resp
}

func (s *RouterService) handleKnowledgeQuery(ctx context.Context, sess *ChatSession, userInput string) *model.ChatResponse {
	// A knowledge session can flip into assessment or support at any turn.
	switch s.intents.Classify(ctx, userInput) {
	case IntentSymptomAssessment:
		sess.Mode = model.ModeSymptomAssessment
		return s.handleAssessment(ctx, sess, userInput, assessmentIntro)
	case IntentEmotionalSupport:
		sess.Mode = model.ModeEmotionalSupport
		return s.handleEmotionalSupport(ctx, sess, userInput)
	case IntentOutOfScope:
		return s.respond(ctx, sess, outOfScopeMessage, "success", model.ModeKnowledgeQuery)
	}
	return s.answerKnowledge(ctx, sess, userInput)
}

func (s *RouterService) answerKnowledge(ctx context.Context, sess *ChatSession, userInput string) *model.ChatResponse {
	answer, err := s.generate(ctx, s.knowledgeOracle, prompt.TemplateKnowledgeQuery, userInput)
	if err != nil {
		log.Printf("session %s: knowledge query failed: %v", sess.ID, err)
		answer = "I apologize, but my knowledge system is currently unavailable. Please consult with a healthcare professional for menopause-related questions."
		return s.respond(ctx, sess, answer, "error", model.ModeKnowledgeQuery)
	}
	answer += "\n\nIs there anything else about menopause you'd like to know?"
	return s.respond(ctx, sess, answer, "success", model.ModeKnowledgeQuery)
}

func (s *RouterService) handleEmotionalSupport(ctx context.Context, sess *ChatSession, userInput string) *model.ChatResponse {
	switch s.intents.Classify(ctx, userInput) {
	case IntentSymptomAssessment:
		sess.Mode = model.ModeSymptomAssessment
		return s.handleAssessment(ctx, sess, userInput, assessmentIntro)
	case IntentKnowledgeQuery:
		sess.Mode = model.ModeKnowledgeQuery
		return s.handleKnowledgeQuery(ctx, sess, userInput)
	case IntentOutOfScope:
		return s.respond(ctx, sess, outOfScopeMessage, "success", model.ModeEmotionalSupport)
	}

	answer, err := s.generate(ctx, s.supportOracle, prompt.TemplateEmotionalSupport, userInput)
	if err != nil {
		log.Printf("session %s: support reply failed: %v", sess.ID, err)
		answer = "I hear you, and I want you to know that what you're feeling is completely valid. " +
			"Menopause is a significant life transition, and it's normal to feel overwhelmed or anxious about the changes.\n\n" +
			"You're not alone in this journey. Consider reaching out to healthcare providers, support groups, or trusted friends and family.\n\n" +
			"I'm here to support you. What specific aspect of your menopause experience would you like to talk about?"
		return s.respond(ctx, sess, answer, "error", model.ModeEmotionalSupport)
	}
	return s.respond(ctx, sess, answer, "success", model.ModeEmotionalSupport)
}

func (s *RouterService) generate(ctx context.Context, gen oracle.Generator, templateName, userInput string) (string, error) {
	rendered, err := s.templates.Render(templateName, map[string]any{
		"user_input": userInput,
	})
	if err != nil {
		return "", err
	}
	return gen.Generate(ctx, rendered)
}

// resetSession abandons any in-progress assessment and returns the session
// to the main menu.
func (s *RouterService) resetSession(sess *ChatSession) {
	sess.Assessment.Reset()
	sess.Mode = model.ModeMainMenu
}

// respond records the assistant reply, refreshes the cached routing state,
// and builds the response DTO.
func (s *RouterService) respond(ctx context.Context, sess *ChatSession, message, status string, mode model.ConversationMode) *model.ChatResponse {
	s.recordMessage(ctx, sess, "assistant", message)

	if s.sessionCache != nil {
		meta := &model.SessionMeta{
			SessionID:   sess.ID,
			UserID:      sess.UserID,
			CurrentFlow: sess.Mode,
		}
		if err := s.sessionCache.SetMeta(ctx, meta); err != nil {
			log.Printf("session %s: cache update failed: %v", sess.ID, err)
		}
	}

	return &model.ChatResponse{
		SessionID: sess.ID,
		Response:  message,
		Status:    status,
		Flow:      mode,
	}
}

func (s *RouterService) recordMessage(ctx context.Context, sess *ChatSession, role, content string) {
	if s.conversations == nil {
		return
	}
	msg := &model.ConversationMessage{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Role:      role,
		Content:   content,
	}
	if err := s.conversations.Append(ctx, msg); err != nil {
		log.Printf("session %s: history append failed: %v", sess.ID, err)
	}
}

func (s *RouterService) saveReport(ctx context.Context, sess *ChatSession, turn *model.TurnResult) {
	if s.assessments == nil || turn.MRSScore == nil {
		return
	}
	report := &model.AssessmentReport{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		TotalScore:     *turn.MRSScore,
		Interpretation: turn.Message,
		Records:        turn.Records,
	}
	if err := s.assessments.Create(ctx, report); err != nil {
		log.Printf("session %s: report save failed: %v", sess.ID, err)
	}
}
