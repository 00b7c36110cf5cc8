package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"github.com/aide-lab/mnemo/pkg/usecase"
	"github.com/aide-lab/mnemo/pkg/utils/errutil"
)

type ctxKey string

const userIDKey ctxKey = "mnemo.userID"

// requireUser extracts the caller identity from the gateway header
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := types.UserID(r.Header.Get(userHeader))
		if err := userID.Validate(); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "missing user identity"), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) types.UserID {
	id, _ := r.Context().Value(userIDKey).(types.UserID)
	return id
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrEmptyMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

type conversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toConversationResponse(c *model.Conversation) conversationResponse {
	return conversationResponse{
		ID:        c.ID.String(),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type messageResponse struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	Text         string    `json:"text"`
	ModelVariant string    `json:"model_variant,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMessageResponse(m *model.Message) messageResponse {
	return messageResponse{
		ID:           m.ID.String(),
		Role:         m.Role.String(),
		Text:         m.Text,
		ModelVariant: m.ModelVariant,
		CreatedAt:    m.CreatedAt,
	}
}

func createConversationHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Title string `json:"title"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		// An empty body is fine; anything unparsable is not.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		conv, err := uc.Conversation.Create(r.Context(), userFrom(r), req.Title)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, toConversationResponse(conv))
	}
}

func listConversationsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Conversations []conversationResponse `json:"conversations"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 50)

		convs, err := uc.Conversation.List(r.Context(), userFrom(r), limit)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		resp := response{Conversations: make([]conversationResponse, len(convs))}
		for i, c := range convs {
			resp.Conversations[i] = toConversationResponse(c)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func listMessagesHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Messages   []messageResponse `json:"messages"`
		NextCursor string            `json:"next_cursor,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		convID := types.ConversationID(chi.URLParam(r, "conversationID"))
		limit := queryInt(r, "limit", 50)
		cursor := r.URL.Query().Get("cursor")

		msgs, next, err := uc.Conversation.Messages(r.Context(), userFrom(r), convID, limit, cursor)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		resp := response{
			Messages:   make([]messageResponse, len(msgs)),
			NextCursor: next,
		}
		for i, m := range msgs {
			resp.Messages[i] = toMessageResponse(m)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func postMessageHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Text string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		convID := types.ConversationID(chi.URLParam(r, "conversationID"))

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		reply, err := uc.Chat.Post(r.Context(), userFrom(r), convID, req.Text)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, toMessageResponse(reply))
	}
}

func resetConversationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID := types.ConversationID(chi.URLParam(r, "conversationID"))

		if err := uc.Conversation.Reset(r.Context(), userFrom(r), convID); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
