// ABOUTME: Matrix transport for the kiosk bot
// ABOUTME: Routes commands, option picks and free text into the dialog core

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/kioskbot/kiosk/internal/config"
	"github.com/kioskbot/kiosk/internal/dialog"
)

// Bridge connects a Matrix account to the dialog engine. Incoming messages
// are handled sequentially in sync order, so each user's dialog sees one
// event at a time.
type Bridge struct {
	cfg    *config.MatrixConfig
	matrix *mautrix.Client
	engine *dialog.Engine
	logger *slog.Logger

	// Last shown option tokens per identity, so a numbered reply can be
	// mapped back to its selector token.
	mu      sync.Mutex
	pending map[int64][]string
}

// New creates a Bridge over the configured Matrix account.
func New(cfg *config.MatrixConfig, engine *dialog.Engine, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	return &Bridge{
		cfg:     cfg,
		matrix:  client,
		engine:  engine,
		logger:  logger.With("component", "bridge"),
		pending: make(map[int64][]string),
	}, nil
}

// Run starts the sync loop and blocks until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("starting matrix bridge",
		"homeserver", b.cfg.Homeserver,
		"user_id", b.cfg.UserID,
	)

	syncer, ok := b.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, b.handleMessageEvent)

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.matrix.SyncWithContext(ctx)
	}()

	select {
	case <-ctx.Done():
		b.logger.Info("shutting down matrix bridge")
		return nil
	case err := <-syncErr:
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMessageEvent processes one incoming Matrix message.
func (b *Bridge) handleMessageEvent(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(b.cfg.UserID) {
		return
	}
	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok || content.MsgType != event.MsgText {
		return
	}
	if !b.roomAllowed(evt.RoomID.String()) {
		b.logger.Debug("ignoring message from non-allowed room", "room", evt.RoomID.String())
		return
	}

	body := strings.TrimSpace(content.Body)
	if body == "" {
		return
	}

	user := Identity(evt.Sender.String())
	reply := b.dispatch(ctx, user, body)
	if reply.Empty() {
		return
	}
	b.remember(user, reply)
	b.send(evt.RoomID, reply)
}

// dispatch routes a message body to the right core entry point: a prefixed
// command, a numbered or literal option pick, or free-form dialog text.
func (b *Bridge) dispatch(ctx context.Context, user int64, body string) dialog.Reply {
	if cmd, ok := b.command(body); ok {
		switch cmd {
		case "start", "menu":
			return b.engine.Menu(user)
		case "manage":
			return b.engine.Manage(user)
		case "cancel":
			return b.engine.Cancel(user)
		case "history":
			return b.engine.History(ctx, user, 10)
		default:
			// Unknown commands fall through as dialog input.
		}
	}

	if token, ok := b.resolveOption(user, body); ok {
		return b.engine.Select(ctx, user, token)
	}
	return b.engine.Text(ctx, user, body)
}

// command extracts a prefixed command word. With an empty prefix every
// bare word is tried as a command, matching the original bot's slash
// commands as closely as Matrix allows.
func (b *Bridge) command(body string) (string, bool) {
	prefix := b.cfg.CommandPrefix
	if prefix != "" {
		if !strings.HasPrefix(body, prefix) {
			return "", false
		}
		body = strings.TrimPrefix(body, prefix)
	}
	fields := strings.Fields(body)
	if len(fields) != 1 {
		return "", false
	}
	return strings.ToLower(fields[0]), true
}

// resolveOption maps a reply against the options last shown to the user:
// a plain number picks by position, an exact token string picks directly.
func (b *Bridge) resolveOption(user int64, body string) (string, bool) {
	b.mu.Lock()
	tokens := b.pending[user]
	b.mu.Unlock()

	if n, err := strconv.Atoi(body); err == nil {
		if n >= 1 && n <= len(tokens) {
			return tokens[n-1], true
		}
		return "", false
	}
	for _, token := range tokens {
		if body == token {
			return token, true
		}
	}
	return "", false
}

// remember records the reply's option tokens for the user, or clears them
// when the dialog ended or offered nothing to pick.
func (b *Bridge) remember(user int64, reply dialog.Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if reply.End || len(reply.Options) == 0 {
		delete(b.pending, user)
		return
	}
	tokens := make([]string, len(reply.Options))
	for i, opt := range reply.Options {
		tokens[i] = opt.Token
	}
	b.pending[user] = tokens
}

func (b *Bridge) roomAllowed(roomID string) bool {
	if len(b.cfg.AllowedRooms) == 0 {
		return true
	}
	for _, allowed := range b.cfg.AllowedRooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// send delivers a rendered reply to the room.
func (b *Bridge) send(roomID id.RoomID, reply dialog.Reply) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := b.matrix.SendMessageEvent(ctx, roomID, event.EventMessage, renderReply(reply))
	if err != nil {
		b.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}
