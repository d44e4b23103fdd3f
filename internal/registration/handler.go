// Package registration turns register slash commands into member records.
//
// Flow for one INTERACTION_CREATE event:
//
//	decode interaction -> build model.Member from options -> Store.CreateMember
//	  -> on success: users_created +1, ephemeral acknowledgement
//	  -> on failure: failed_db_updates +1, no reply
//
// A failed acknowledgement counts as a failed interaction. Nothing is retried.
package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/registration-bot/internal/api"
	"github.com/rickgao/registration-bot/internal/dispatch"
	"github.com/rickgao/registration-bot/internal/metrics"
	"github.com/rickgao/registration-bot/internal/model"
)

// EventType is the dispatch event the handler consumes.
const EventType = "INTERACTION_CREATE"

const (
	DefaultCommandName  = "register"
	DefaultReplyMessage = "You have been registered!"
)

// Option names of the register command.
const (
	OptNetID      = "netid"
	OptFirstName  = "first_name"
	OptLastName   = "last_name"
	OptEmail      = "email"
	OptNationalID = "acm_id"
)

var (
	ErrMalformedInteraction = errors.New("malformed interaction")
	ErrInvalidMember        = errors.New("invalid registration")
)

// Store persists member records.
type Store interface {
	CreateMember(ctx context.Context, m model.Member) error
}

// Responder answers interactions.
type Responder interface {
	CreateInteractionResponse(ctx context.Context, interactionID, token string, resp api.InteractionResponse) error
}

// Config holds handler settings.
type Config struct {
	CommandName  string
	ReplyMessage string
}

// Handler handles register interactions. It implements dispatch.Handler.
type Handler struct {
	cfg       Config
	store     Store
	responder Responder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

var _ dispatch.Handler = (*Handler)(nil)

// NewHandler creates a handler writing to store and replying through responder.
func NewHandler(cfg Config, store Store, responder Responder, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if cfg.CommandName == "" {
		cfg.CommandName = DefaultCommandName
	}
	if cfg.ReplyMessage == "" {
		cfg.ReplyMessage = DefaultReplyMessage
	}
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		store:     store,
		responder: responder,
		metrics:   m,
		logger:    logger.With("component", "registration"),
		now:       time.Now,
	}
}

// Handle processes one INTERACTION_CREATE task. Interactions for other
// commands are ignored.
func (h *Handler) Handle(ctx context.Context, task dispatch.Task) error {
	var in api.Interaction
	if err := json.Unmarshal(task.Event.Data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInteraction, err)
	}

	if in.Type != api.InteractionApplicationCommand || in.Data == nil || in.Data.Name != h.cfg.CommandName {
		h.logger.Debug("ignoring interaction", "interaction_id", in.ID, "type", in.Type)
		return nil
	}
	if in.ID == "" || in.Token == "" {
		return fmt.Errorf("%w: missing id or token", ErrMalformedInteraction)
	}

	member := MemberFromInteraction(&in, h.now())
	if err := member.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMember, err)
	}

	logger := h.logger.With(member.LogAttrs()...)

	if err := h.store.CreateMember(ctx, member); err != nil {
		h.metrics.IncFailedDBUpdates()
		logger.Error("failed to create member record", "error", err)
		return fmt.Errorf("create member: %w", err)
	}
	h.metrics.IncUsersCreated()
	logger.Info("member registered")

	if err := h.responder.CreateInteractionResponse(ctx, in.ID, in.Token, api.EphemeralMessage(h.cfg.ReplyMessage)); err != nil {
		h.metrics.IncFailedInteractions()
		logger.Error("failed to acknowledge interaction", "interaction_id", in.ID, "error", err)
		return fmt.Errorf("acknowledge: %w", err)
	}
	return nil
}

// MemberFromInteraction builds a member from the command options, looked
// up by name. The invoking user's ID becomes DiscordID.
func MemberFromInteraction(in *api.Interaction, receivedAt time.Time) model.Member {
	opt := func(name string) string {
		if in.Data == nil {
			return ""
		}
		o, ok := in.Data.Option(name)
		if !ok {
			return ""
		}
		return o.String()
	}

	return model.Member{
		NetID:      opt(OptNetID),
		FirstName:  opt(OptFirstName),
		LastName:   opt(OptLastName),
		Email:      opt(OptEmail),
		NationalID: opt(OptNationalID),
		DiscordID:  in.InvokerID(),
		CreatedAt:  receivedAt,
	}
}
