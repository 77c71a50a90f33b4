package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/auth"
	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/sdk-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/sdk-quiz/pkg/http/ws"
)

// WSHandler plays a session over a WebSocket.
type WSHandler struct {
	service   *Service
	validator auth.TokenValidator
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewWSHandler creates the /ws/play handler.
func NewWSHandler(service *Service, validator auth.TokenValidator, hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service:   service,
		validator: validator,
		hub:       hub,
		upgrader:  upgrader,
		logger:    logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandlePlay authenticates the session token, upgrades the connection and runs
// the quiz loop until the report is sent or the client leaves.
func (h *WSHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Missing token")
		return
	}
	claims, err := h.validator.Validate(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	sessionID := claims.SessionID
	logger := h.logger.With().Str("session_id", sessionID.String()).Logger()
	conn := ws.NewConnection(raw, logger)
	h.hub.RegisterConnection(sessionID, conn)
	defer h.hub.UnregisterConnection(sessionID, conn)

	go conn.WritePump()

	prompter := newSocketPrompter(conn)
	go conn.ReadPump(prompter.handle)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go func() {
		<-conn.Done()
		cancel()
	}()

	rep, err := h.service.Play(ctx, sessionID, &socketView{conn: conn, sessionID: sessionID.String()}, prompter)
	switch {
	case err == nil:
		msg, err := ws.NewMessage(ws.TypeReport, rep)
		if err == nil {
			err = h.hub.SendToSession(sessionID, msg)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("report not delivered")
		}
	case errors.Is(err, quiz.ErrInterrupted):
		logger.Info().Msg("player left; progress kept")
	default:
		logger.Warn().Err(err).Msg("play failed")
		sendError(conn, errorCode(err), err.Error())
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrStale):
		return httperrors.ErrCodeSessionConflict
	case errors.Is(err, ErrNotFound):
		return httperrors.ErrCodeSessionNotFound
	case errors.Is(err, quiz.ErrSessionComplete):
		return httperrors.ErrCodeSessionComplete
	case errors.Is(err, ErrBusy):
		return httperrors.ErrCodeSessionBusy
	}
	return httperrors.ErrCodeInternalError
}

func sendError(conn *ws.Connection, code, message string) {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err == nil {
		_ = conn.Send(msg)
	}
}

// socketPrompter turns incoming answer messages into lines for the runner.
type socketPrompter struct {
	conn    *ws.Connection
	answers chan string
}

func newSocketPrompter(conn *ws.Connection) *socketPrompter {
	return &socketPrompter{conn: conn, answers: make(chan string, 8)}
}

func (p *socketPrompter) handle(msg ws.Message) error {
	switch msg.Type {
	case ws.TypeAnswer:
		var payload ws.AnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sendError(p.conn, httperrors.ErrCodeInvalidPayload, "answer payload must be {\"answer\": \"...\"}")
			return err
		}
		select {
		case p.answers <- payload.Answer:
		case <-p.conn.Done():
		}
	case ws.TypePing:
		return p.conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		sendError(p.conn, httperrors.ErrCodeUnknownMessageType, "unknown message type "+msg.Type)
	}
	return nil
}

func (p *socketPrompter) ReadLine(ctx context.Context, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.conn.Done():
		return "", io.EOF
	case answer := <-p.answers:
		return answer, nil
	}
}

// socketView renders the quiz loop as protocol messages.
type socketView struct {
	conn      *ws.Connection
	sessionID string
	style     question.AnswerStyle
}

func (v *socketView) send(msgType string, payload interface{}) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return v.conn.Send(msg)
}

func (v *socketView) ShowQuestion(_ context.Context, n, total int, q question.Question, style question.AnswerStyle) error {
	v.style = style
	keys := style.Keys(len(q.Options))
	opts := make([]ws.OptionPayload, len(q.Options))
	for i, text := range q.Options {
		opts[i] = ws.OptionPayload{Key: keys[i], Text: text}
	}
	return v.send(ws.TypeQuestion, ws.QuestionPayload{
		SessionID:  v.sessionID,
		Number:     n,
		Total:      total,
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: string(q.Difficulty),
		Points:     q.Points,
		Prompt:     q.Prompt,
		Code:       q.CodeExample,
		Options:    opts,
	})
}

func (v *socketView) ShowInvalid(_ context.Context, raw string, keys []string) error {
	return v.send(ws.TypeInvalidSelection, ws.InvalidSelectionPayload{Answer: raw, Keys: keys})
}

func (v *socketView) ShowFeedback(_ context.Context, a quiz.AnsweredQuestion) error {
	return v.send(ws.TypeFeedback, ws.FeedbackPayload{
		QuestionID:    a.Question.ID,
		Key:           a.Key,
		Correct:       a.Correct,
		Points:        a.Points,
		CorrectKey:    v.style.Key(a.Question.Answer),
		CorrectOption: a.Question.CorrectOption(),
		Explanation:   a.Question.Explanation,
		Insight:       a.Question.Insight,
	})
}
