package matrix

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/half-shot/matrix-poweredup/pkg/log"
)

// DefaultSyncStoreType is the account data event holding the sync position.
const DefaultSyncStoreType = "uk.half-shot.matrix-poweredup.sync"

// Config holds what is needed to act as an existing account.
type Config struct {
	HomeserverURL string
	AccessToken   string

	// UserID is looked up with whoami when empty.
	UserID string

	// SyncStoreType names the account data event that keeps the next batch
	// token, so a restart resumes instead of replaying recent events.
	// Defaults to DefaultSyncStoreType.
	SyncStoreType string
}

var _ Client = (*mautrixClient)(nil)

type mautrixClient struct {
	cli *mautrix.Client
}

// NewClient returns a Client backed by mautrix.
func NewClient(cfg Config) (Client, error) {
	if cfg.HomeserverURL == "" || cfg.AccessToken == "" {
		return nil, errors.New("matrix homeserver url and access token are required")
	}

	cli, err := mautrix.NewClient(cfg.HomeserverURL, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix client: %w", err)
	}

	storeType := cfg.SyncStoreType
	if storeType == "" {
		storeType = DefaultSyncStoreType
	}
	cli.Store = mautrix.NewAccountDataStore(storeType, cli)

	// Saving the token is itself an account data change; keep it out of sync
	// responses or every save wakes the next sync.
	if syncer, ok := cli.Syncer.(*mautrix.DefaultSyncer); ok {
		filter := *syncer.GetFilterJSON(cli.UserID)
		filter.AccountData = mautrix.FilterPart{
			Limit:    20,
			NotTypes: []event.Type{event.NewEventType(storeType)},
		}
		syncer.FilterJSON = &filter
	}
	return &mautrixClient{cli: cli}, nil
}

func (c *mautrixClient) whoami(ctx context.Context) error {
	if c.cli.UserID != "" {
		return nil
	}
	resp, err := c.cli.Whoami(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	c.cli.UserID = resp.UserID
	log.Info("Resolved matrix account", "user", resp.UserID)
	return nil
}

func (c *mautrixClient) Sync(ctx context.Context, handler EventHandler) error {
	if err := c.whoami(ctx); err != nil {
		return err
	}

	syncer, ok := c.cli.Syncer.(mautrix.ExtensibleSyncer)
	if !ok {
		return errors.New("matrix syncer does not accept event handlers")
	}
	syncer.OnEvent(func(ctx context.Context, evt *event.Event) {
		handler(ctx, convertEvent(evt))
	})

	log.Info("Starting matrix sync", "user", c.cli.UserID)
	err := c.cli.SyncWithContext(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *mautrixClient) EnsureJoined(ctx context.Context, roomID string) error {
	if err := c.whoami(ctx); err != nil {
		return err
	}

	resp, err := c.cli.JoinedRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list joined rooms: %w", err)
	}
	if slices.Contains(resp.JoinedRooms, id.RoomID(roomID)) {
		return nil
	}

	log.Info("Joining room", "room", roomID)
	if _, err := c.cli.JoinRoomByID(ctx, id.RoomID(roomID)); err != nil {
		return fmt.Errorf("failed to join %s: %w", roomID, err)
	}
	return nil
}

func (c *mautrixClient) SendMessage(ctx context.Context, roomID, eventType string, content any) (string, error) {
	evtType := event.Type{Type: eventType, Class: event.MessageEventType}
	resp, err := c.cli.SendMessageEvent(ctx, id.RoomID(roomID), evtType, content)
	if err != nil {
		return "", fmt.Errorf("failed to send %s to %s: %w", eventType, roomID, err)
	}
	return resp.EventID.String(), nil
}

func convertEvent(evt *event.Event) *Event {
	return &Event{
		ID:        evt.ID.String(),
		RoomID:    evt.RoomID.String(),
		Sender:    evt.Sender.String(),
		Type:      evt.Type.Type,
		StateKey:  evt.StateKey,
		Age:       evt.Unsigned.Age,
		Timestamp: evt.Timestamp,
		Content:   evt.Content.Raw,
	}
}
