// Package httptransport is the thin HTTP layer the chat-platform adapter
// calls into. It delegates to domain services without embedding business
// logic so transport concerns remain isolated.
package httptransport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"rollcall/internal/absence"
	"rollcall/internal/platform/metrics"
	"rollcall/internal/presence"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// VoiceTracker consumes membership change events.
type VoiceTracker interface {
	HandleVoiceState(ctx context.Context, ev presence.VoiceState)
}

// AbsenceRegistrar registers dayoff ranges.
type AbsenceRegistrar interface {
	Register(ctx context.Context, req absence.Request) (absence.Result, error)
}

// Handler wires the webhook endpoints to the tracker and registrar.
type Handler struct {
	tracker         VoiceTracker
	registrar       AbsenceRegistrar
	commandToken    string
	allowedChannels map[domain.ChannelID]bool
	logger          *slog.Logger
	metrics         *metrics.Metrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler constructs the webhook handler. commandToken is the absence
// command prefix; allowedChannels filters where the command is honored.
func NewHandler(tracker VoiceTracker, registrar AbsenceRegistrar, commandToken string, allowedChannels map[domain.ChannelID]bool, opts ...HandlerOption) *Handler {
	h := &Handler{
		tracker:         tracker,
		registrar:       registrar,
		commandToken:    commandToken,
		allowedChannels: allowedChannels,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// voiceStateRequest is the platform's membership change payload. Either
// channel may be empty.
type voiceStateRequest struct {
	MemberID     string `json:"member_id"`
	OldChannelID string `json:"old_channel_id"`
	NewChannelID string `json:"new_channel_id"`
}

// messageRequest is the platform's text message payload.
type messageRequest struct {
	ChannelID   string `json:"channel_id"`
	AuthorID    string `json:"author_id"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
}

// messageResponse carries the reply text for the platform adapter to deliver
// back to the originating channel. Ignored is set when no reply should be
// sent at all.
type messageResponse struct {
	Reply   string `json:"reply,omitempty"`
	Ignored bool   `json:"ignored,omitempty"`
}

// HandleVoiceState handles POST /events/voice-state. The response is always
// 202: presence events carry no reply surface, so failures stay in logs.
func (h *Handler) HandleVoiceState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := decodeJSON[voiceStateRequest](w, r, h.logger)
	if !ok {
		return
	}

	memberID, err := domain.ParseMemberID(req.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.tracker.HandleVoiceState(ctx, presence.VoiceState{
		MemberID:   memberID,
		OldChannel: domain.ChannelID(req.OldChannelID),
		NewChannel: domain.ChannelID(req.NewChannelID),
	})
	w.WriteHeader(http.StatusAccepted)
}

// HandleMessage handles POST /events/message: the absence command pipeline.
// Bot authors and channels outside the allow-list are ignored outright.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := decodeJSON[messageRequest](w, r, h.logger)
	if !ok {
		return
	}

	if req.AuthorIsBot || !h.allowedChannels[domain.ChannelID(req.ChannelID)] {
		writeJSON(w, http.StatusOK, messageResponse{Ignored: true})
		return
	}

	content := strings.TrimSpace(req.Content)
	if !strings.HasPrefix(content, h.commandToken) {
		// Anything else in a command channel gets the usage hint.
		writeJSON(w, http.StatusOK, messageResponse{Reply: h.usage()})
		return
	}

	h.logger.Info("absence command received", "channel", req.ChannelID, "author", req.AuthorID)

	cmd, err := absence.ParseCommand(content)
	if err != nil {
		h.rejectCommand(w, h.usage())
		return
	}

	result, err := h.registrar.Register(ctx, absence.Request{
		IdentityToken: cmd.IdentityToken,
		StartMMDD:     cmd.StartMMDD,
		EndMMDD:       cmd.EndMMDD,
		Reason:        cmd.Reason,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Reply: successReply(result)})
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		h.rejectCommand(w, fmt.Sprintf("date error: %s (use mmdd, e.g. 0705)", userMessage(err)))
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		h.rejectCommand(w, fmt.Sprintf("identity not found: %s", userMessage(err)))
	default:
		h.logger.Error("absence registration failed", "error", err)
		writeJSON(w, http.StatusOK, messageResponse{Reply: failureReply(result)})
	}
}

func (h *Handler) rejectCommand(w http.ResponseWriter, reply string) {
	if h.metrics != nil {
		h.metrics.IncCommandsRejected()
	}
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply})
}

func (h *Handler) usage() string {
	return fmt.Sprintf("command error: use `%s <member> <start mmdd> <end mmdd> [reason]`", h.commandToken)
}

func successReply(result absence.Result) string {
	reply := fmt.Sprintf("dayoff registered for %s: %s ~ %s", result.Username, result.Start, result.End)
	if failed := result.Failed(); len(failed) > 0 {
		dates := make([]string, len(failed))
		for i, f := range failed {
			dates[i] = f.Date.String()
		}
		reply += fmt.Sprintf(" (not recorded for: %s)", strings.Join(dates, ", "))
	}
	return reply
}

func failureReply(result absence.Result) string {
	return fmt.Sprintf("dayoff registration failed for %s: %d of %d dates not recorded",
		result.Username, len(result.Failed()), len(result.Dates))
}

// userMessage strips the code prefix so replies read like sentences.
func userMessage(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
