package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neonsprawl/engine/internal/game"
	"github.com/neonsprawl/engine/pkg/entity"
)

const (
	groupGlobal = "global"

	// Snapshot sizes pushed on connect and after each action.
	snapshotLogLimit  = 10
	snapshotMapRadius = 1
)

func groupLocation(x, y int) string {
	return fmt.Sprintf("location:%d:%d", x, y)
}

func groupBuilding(id string) string {
	return "building:" + id
}

// Conn is the router's view of a client connection. Send must never
// block; transports buffer and drop on overflow.
type Conn interface {
	Send(event Event)
}

type session struct {
	conn        Conn
	characterID int64
	groups      map[string]struct{}
}

// Router tracks connections and their group memberships, resolves
// client actions, and fans events out to scope groups. A connection is
// always a member of global, its location group, and its building
// group while contained.
type Router struct {
	resolver *game.Resolver
	chars    *game.Characters
	world    *game.World
	log      *game.ActionLog
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	groups   map[string]map[string]struct{} // group name -> conn IDs
}

func NewRouter(resolver *game.Resolver, chars *game.Characters, world *game.World, log *game.ActionLog, logger *slog.Logger) *Router {
	return &Router{
		resolver: resolver,
		chars:    chars,
		world:    world,
		log:      log,
		logger:   logger,
		sessions: make(map[string]*session),
		groups:   make(map[string]map[string]struct{}),
	}
}

// groupsFor derives the full group set implied by a character's
// position and containment.
func groupsFor(c *entity.Character) map[string]struct{} {
	groups := map[string]struct{}{
		groupGlobal:             {},
		groupLocation(c.X, c.Y): {},
	}
	if c.InsideBuilding && c.BuildingID != "" {
		groups[groupBuilding(c.BuildingID)] = struct{}{}
	}
	return groups
}

// OnConnect registers the connection, joins its implied groups, and
// pushes the full state snapshot to it.
func (r *Router) OnConnect(ctx context.Context, connID string, conn Conn, characterID int64) error {
	c, err := r.chars.Get(ctx, characterID)
	if err != nil {
		conn.Send(errorEvent("Character not found"))
		return err
	}

	sess := &session{
		conn:        conn,
		characterID: characterID,
		groups:      groupsFor(c),
	}

	r.mu.Lock()
	r.sessions[connID] = sess
	for g := range sess.groups {
		r.join(g, connID)
	}
	r.mu.Unlock()

	r.logger.Debug("Connection registered", "conn_id", connID, "character_id", characterID)

	r.sendSnapshot(ctx, conn, c)
	return nil
}

// OnDisconnect tears the connection down. Broadcasts after this call
// can never reach it.
func (r *Router) OnDisconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return
	}
	for g := range sess.groups {
		r.leave(g, connID)
	}
	delete(r.sessions, connID)

	r.logger.Debug("Connection removed", "conn_id", connID, "character_id", sess.characterID)
}

// OnAction resolves an action for the connection's character and
// pushes the resulting state. Failures go to the sender only; group
// membership follows the character when the action moved it.
func (r *Router) OnAction(ctx context.Context, connID string, actionType string, data map[string]any) {
	sess, conn := r.session(connID)
	if sess == nil {
		return
	}

	old, err := r.chars.Get(ctx, sess.characterID)
	if err != nil {
		conn.Send(errorEvent("Character not found"))
		return
	}

	outcome, err := r.resolver.Resolve(ctx, sess.characterID, game.ActionType(actionType), data)
	if err != nil {
		r.logger.Error("Action resolution failed", "conn_id", connID, "character_id", sess.characterID, "error", err)
		conn.Send(errorEvent("Action failed"))
		return
	}
	if !outcome.Success {
		conn.Send(errorEvent(outcome.Message))
		return
	}

	c, err := r.chars.Get(ctx, sess.characterID)
	if err != nil {
		conn.Send(errorEvent("Character not found"))
		return
	}

	conn.Send(Event{Type: EventCharacterUpdate, Data: c})

	// BuildingID is part of the diff: entering one building directly
	// from another changes containment without toggling InsideBuilding.
	moved := c.X != old.X || c.Y != old.Y || c.InsideBuilding != old.InsideBuilding || c.BuildingID != old.BuildingID
	if moved {
		r.moveGroups(connID, sess, c)

		r.sendLocation(ctx, conn, c)
		r.sendMap(ctx, conn, c)

		r.broadcast(groupLocation(old.X, old.Y), Event{Type: EventPlayerLeft, Data: Presence{
			CharacterID:   c.ID,
			CharacterName: c.Name,
		}}, connID)
		r.broadcast(groupLocation(c.X, c.Y), Event{Type: EventPlayerEntered, Data: Presence{
			CharacterID:   c.ID,
			CharacterName: c.Name,
		}}, connID)
	}

	r.sendActions(ctx, conn, c.ID)
	r.sendLogs(ctx, conn, c.ID)
	conn.Send(messageEvent(outcome.Message))
}

// RouteChat delivers a chat line to the named channel's group. The
// sender receives its own message like any other member.
func (r *Router) RouteChat(ctx context.Context, connID string, channel, message string) {
	sess, conn := r.session(connID)
	if sess == nil {
		return
	}

	c, err := r.chars.Get(ctx, sess.characterID)
	if err != nil {
		conn.Send(errorEvent("Character not found"))
		return
	}

	chat := ChatMessage{
		CharacterID:   c.ID,
		CharacterName: c.Name,
		Message:       message,
		Channel:       channel,
		Timestamp:     time.Now(),
	}

	var group string
	switch {
	case channel == "global":
		group = groupGlobal
	case channel == "location":
		group = groupLocation(c.X, c.Y)
	case channel == "building" && c.InsideBuilding:
		group = groupBuilding(c.BuildingID)
	default:
		conn.Send(errorEvent("Invalid chat channel"))
		return
	}

	r.broadcast(group, Event{Type: EventChatMessage, Data: chat}, "")
}

// session returns the registered session and its conn, or nil.
func (r *Router) session(connID string) (*session, Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[connID]
	if !ok {
		return nil, nil
	}
	return sess, sess.conn
}

// moveGroups swaps the connection onto the group set implied by the
// character's new position.
func (r *Router) moveGroups(connID string, sess *session, c *entity.Character) {
	next := groupsFor(c)

	r.mu.Lock()
	defer r.mu.Unlock()

	for g := range sess.groups {
		if _, keep := next[g]; !keep {
			r.leave(g, connID)
		}
	}
	for g := range next {
		if _, had := sess.groups[g]; !had {
			r.join(g, connID)
		}
	}
	sess.groups = next
}

// join and leave mutate the group index; callers hold r.mu.
func (r *Router) join(group, connID string) {
	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]struct{})
		r.groups[group] = members
	}
	members[connID] = struct{}{}
}

func (r *Router) leave(group, connID string) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// broadcast delivers an event to every member of a group, optionally
// excluding one connection. Delivery is fire-and-forget.
func (r *Router) broadcast(group string, event Event, excludeConnID string) {
	r.mu.Lock()
	conns := make([]Conn, 0, len(r.groups[group]))
	for connID := range r.groups[group] {
		if connID == excludeConnID {
			continue
		}
		if sess, ok := r.sessions[connID]; ok {
			conns = append(conns, sess.conn)
		}
	}
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Send(event)
	}
}

// sendSnapshot pushes the full client state: character, actions,
// recent logs, location detail and the surrounding map.
func (r *Router) sendSnapshot(ctx context.Context, conn Conn, c *entity.Character) {
	conn.Send(Event{Type: EventCharacterUpdate, Data: c})
	r.sendActions(ctx, conn, c.ID)
	r.sendLogs(ctx, conn, c.ID)
	r.sendLocation(ctx, conn, c)
	r.sendMap(ctx, conn, c)
}

func (r *Router) sendActions(ctx context.Context, conn Conn, characterID int64) {
	actions, err := r.resolver.AvailableActions(ctx, characterID)
	if err != nil {
		r.logger.Warn("Failed to load available actions", "character_id", characterID, "error", err)
		return
	}
	conn.Send(Event{Type: EventActionsUpdate, Data: actions})
}

func (r *Router) sendLogs(ctx context.Context, conn Conn, characterID int64) {
	logs, err := r.log.Recent(ctx, characterID, snapshotLogLimit)
	if err != nil {
		r.logger.Warn("Failed to load recent logs", "character_id", characterID, "error", err)
		return
	}
	conn.Send(Event{Type: EventLogsUpdate, Data: logs})
}

func (r *Router) sendLocation(ctx context.Context, conn Conn, c *entity.Character) {
	update := LocationUpdate{
		X:              c.X,
		Y:              c.Y,
		InsideBuilding: c.InsideBuilding,
	}

	if c.InsideBuilding {
		building, err := r.world.BuildingWithContents(ctx, c.BuildingID)
		if err != nil || building == nil {
			r.logger.Warn("Failed to load building detail", "building_id", c.BuildingID, "error", err)
			return
		}
		update.Building = building
	} else {
		tile, err := r.world.TileWithContents(ctx, c.X, c.Y)
		if err != nil || tile == nil {
			r.logger.Warn("Failed to load tile detail", "x", c.X, "y", c.Y, "error", err)
			return
		}
		update.Tile = tile
	}

	conn.Send(Event{Type: EventLocationUpdate, Data: update})
}

func (r *Router) sendMap(ctx context.Context, conn Conn, c *entity.Character) {
	slice, err := r.world.MapSlice(ctx, c.X, c.Y, snapshotMapRadius)
	if err != nil {
		r.logger.Warn("Failed to load map slice", "x", c.X, "y", c.Y, "error", err)
		return
	}
	conn.Send(Event{Type: EventMapUpdate, Data: MapUpdate{
		Map: slice,
		CharacterPosition: Position{
			X:              c.X,
			Y:              c.Y,
			InsideBuilding: c.InsideBuilding,
		},
	}})
}
