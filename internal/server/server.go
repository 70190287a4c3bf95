package server

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pixelgrove/metaverse/internal/ai"
	"github.com/pixelgrove/metaverse/internal/database"
	"github.com/pixelgrove/metaverse/internal/history"
	"github.com/pixelgrove/metaverse/internal/registry"
	"github.com/pixelgrove/metaverse/internal/stats"
	"github.com/pixelgrove/metaverse/internal/types"
)

const (
	// PrivateHistoryCap bounds each character's private message list.
	// Sender and recipient sides are capped independently.
	PrivateHistoryCap = 50

	// npcContextLimit is how much recent room chat an NPC reply sees.
	npcContextLimit = 10

	npcReplyTimeout = 15 * time.Second
)

// GameServer is the session router: it binds sessions to characters and
// rooms, translates client intents into registry calls, and performs
// all network fan-out. A single run loop goroutine processes inbound
// events in arrival order, which serializes every room mutation.
type GameServer struct {
	log      *log.Logger
	registry *registry.Registry
	eventLog database.EventLogRepository
	npc      ai.Responder
	stats    stats.StatsProvider

	EventChan      chan *ClientMessage
	RegisterChan   chan *Session
	DeRegisterChan chan *Session
	npcChatChan    chan npcChat

	sessions     map[*Session]struct{}
	byCharacter  map[string]*Session
	roomSessions map[string]map[*Session]struct{}
	pmHistory    map[string]*history.History[types.PrivateMessageEntry]

	stop chan struct{}
	done chan struct{}
}

type npcChat struct {
	roomId    string
	character types.Character
	message   string
}

func NewGameServer(logger *log.Logger, reg *registry.Registry, eventLog database.EventLogRepository, npc ai.Responder, su stats.StatsProvider) (*GameServer, error) {
	for _, metric := range []string{
		stats.NumConnectedSessions,
		stats.NumChatMessages,
		stats.NumPrivateMessages,
		stats.NumInteractions,
	} {
		su.RegisterMetric(metric)
	}

	return &GameServer{
		log:            logger,
		registry:       reg,
		eventLog:       eventLog,
		npc:            npc,
		stats:          su,
		EventChan:      make(chan *ClientMessage, 256),
		RegisterChan:   make(chan *Session),
		DeRegisterChan: make(chan *Session),
		npcChatChan:    make(chan npcChat, 64),
		sessions:       make(map[*Session]struct{}),
		byCharacter:    make(map[string]*Session),
		roomSessions:   make(map[string]map[*Session]struct{}),
		pmHistory:      make(map[string]*history.History[types.PrivateMessageEntry]),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

func (gs *GameServer) Run() {
	for {
		select {
		case msg := <-gs.EventChan:
			gs.dispatch(msg)
		case s := <-gs.RegisterChan:
			gs.addSession(s)
		case s := <-gs.DeRegisterChan:
			gs.handleDisconnect(s)
		case nc := <-gs.npcChatChan:
			gs.handleNpcChat(nc)
		case <-gs.stop:
			gs.log.Println("shutting down sessions")
			for s := range gs.sessions {
				s.stopSession()
			}
			close(gs.done)
			return
		}
	}
}

func (gs *GameServer) Shutdown(ctx context.Context) error {
	close(gs.stop)
	select {
	case <-gs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (gs *GameServer) dispatch(msg *ClientMessage) {
	switch {
	case msg.Join != nil:
		gs.handleJoin(msg)
	case msg.Move != nil:
		gs.handleMove(msg)
	case msg.Chat != nil:
		gs.handleChat(msg)
	case msg.Interact != nil:
		gs.handleInteract(msg)
	case msg.PrivateMessage != nil:
		gs.handlePrivateMessage(msg)
	}
}

func (gs *GameServer) addSession(s *Session) {
	gs.sessions[s] = struct{}{}
	gs.stats.Incr(stats.NumConnectedSessions)
}

func (gs *GameServer) handleJoin(msg *ClientMessage) {
	s := msg.session
	ch := msg.Join.Character
	if ch.Id == "" {
		ch.Id = uuid.NewString()
	}

	roomId := msg.Join.RoomId
	if roomId == "" {
		roomId = registry.DefaultRoomId
	}

	members, err := gs.registry.JoinRoom(roomId, ch)
	if err != nil {
		if errors.Is(err, registry.ErrRoomCapacity) {
			summary, serr := gs.registry.GetRoom(roomId)
			if serr != nil {
				summary = types.RoomSummary{Id: roomId}
			}
			s.queueMessage(NewRoomFullError(summary))
			return
		}
		gs.log.Printf("join room %q: %v", roomId, err)
		return
	}

	// rebinding to a new character id: retire the session's previous
	// identity so it neither lingers in a roster nor keeps receiving
	// private messages
	if s.joined && s.character.Id != ch.Id {
		gs.registry.LeaveRoom(s.roomId, s.character.Id)
		delete(gs.byCharacter, s.character.Id)
		if s.roomId == roomId {
			if refreshed, merr := gs.registry.Members(roomId); merr == nil {
				members = refreshed
			}
		}
	}

	// moving rooms: drop the session from the previous fan-out set and
	// tell that room the character left
	if s.joined && s.roomId != roomId {
		gs.removeFromRoomSet(s.roomId, s)
		gs.broadcastRoomUpdate(s.roomId)
	}

	s.character = ch
	s.roomId = roomId
	s.joined = true
	gs.byCharacter[ch.Id] = s
	if gs.roomSessions[roomId] == nil {
		gs.roomSessions[roomId] = make(map[*Session]struct{})
	}
	gs.roomSessions[roomId][s] = struct{}{}

	gs.broadcast(roomId, &ServerMessage{
		Timestamp: Now(),
		RoomUpdate: &RoomUpdate{
			RoomId:      roomId,
			Characters:  members,
			MemberCount: len(members),
		},
	})
}

func (gs *GameServer) handleMove(msg *ClientMessage) {
	s := msg.session
	if !s.joined {
		// deliberately tolerant: no response for un-joined movers
		return
	}

	ch, err := gs.registry.MoveCharacter(s.roomId, s.character.Id, msg.Move.X, msg.Move.Y)
	if err != nil {
		return
	}
	s.character = ch

	gs.broadcast(s.roomId, &ServerMessage{
		Timestamp: Now(),
		CharacterUpdate: &CharacterUpdate{
			RoomId:    s.roomId,
			Character: ch,
		},
	})
}

func (gs *GameServer) handleChat(msg *ClientMessage) {
	s := msg.session
	if !s.joined {
		return
	}

	text := strings.TrimSpace(msg.Chat.Message)
	if text == "" {
		return
	}

	entry := types.ChatEntry{
		CharacterId:   s.character.Id,
		CharacterName: s.character.Name,
		Message:       text,
		Timestamp:     Now(),
		RoomId:        s.roomId,
	}

	if err := gs.registry.AppendChat(s.roomId, entry); err != nil {
		gs.log.Printf("append chat to room %q: %v", s.roomId, err)
		return
	}

	gs.stats.Incr(stats.NumChatMessages)
	gs.broadcast(s.roomId, &ServerMessage{Timestamp: entry.Timestamp, ChatBroadcast: &entry})

	go gs.logChat(entry)
	gs.triggerNpcReplies(s.roomId, entry)
}

func (gs *GameServer) handleInteract(msg *ClientMessage) {
	s := msg.session
	if !s.joined {
		return
	}

	targetId := msg.Interact.TargetCharacterId
	target, ok := gs.registry.Member(s.roomId, targetId)
	if !ok {
		// target not in the sender's room: silently dropped
		return
	}

	delta := interactionDelta(msg.Interact.InteractionType)
	score, err := gs.registry.Affinity().Adjust(s.roomId, targetId, s.character.Id, delta)
	if err != nil {
		return
	}
	gs.stats.Incr(stats.NumInteractions)

	now := Now()
	gs.broadcast(s.roomId, &ServerMessage{
		Timestamp: now,
		Affinities: &Affinities{
			RoomId:     s.roomId,
			Affinities: gs.registry.Affinity().AllForRoom(s.roomId),
		},
	})
	gs.broadcast(s.roomId, &ServerMessage{
		Timestamp: now,
		InteractionBroadcast: &InteractionBroadcast{
			FromCharacterId:   s.character.Id,
			ToCharacterId:     targetId,
			InteractionType:   msg.Interact.InteractionType,
			Affinity:          score,
			FromCharacterName: s.character.Name,
			ToCharacterName:   target.Name,
			Timestamp:         now,
		},
	})

	go gs.logInteraction(database.InteractionLog{
		RoomId:          s.roomId,
		SourceId:        s.character.Id,
		TargetId:        targetId,
		InteractionType: msg.Interact.InteractionType,
		Delta:           delta,
		Score:           score,
		CreatedAt:       now,
	})
}

func (gs *GameServer) handlePrivateMessage(msg *ClientMessage) {
	s := msg.session
	if !s.joined {
		return
	}

	text := strings.TrimSpace(msg.PrivateMessage.Message)
	targetId := msg.PrivateMessage.TargetCharacterId
	if text == "" || targetId == "" {
		return
	}

	entry := types.PrivateMessageEntry{
		CharacterId:       s.character.Id,
		CharacterName:     s.character.Name,
		TargetCharacterId: targetId,
		Message:           text,
		Timestamp:         Now(),
	}

	// stored once per side, each capped independently
	gs.privateHistory(s.character.Id).Append(entry)
	if targetId != s.character.Id {
		gs.privateHistory(targetId).Append(entry)
	}
	gs.stats.Incr(stats.NumPrivateMessages)

	out := &ServerMessage{Timestamp: entry.Timestamp, PrivateMessage: &entry}
	s.queueMessage(out)
	if target, ok := gs.byCharacter[targetId]; ok && target != s {
		target.queueMessage(out)
	}

	go gs.logPrivateMessage(entry)
}

func (gs *GameServer) handleDisconnect(s *Session) {
	if _, ok := gs.sessions[s]; !ok {
		return
	}
	delete(gs.sessions, s)
	gs.stats.Decr(stats.NumConnectedSessions)

	if !s.joined {
		return
	}

	gs.registry.LeaveRoom(s.roomId, s.character.Id)
	gs.removeFromRoomSet(s.roomId, s)
	delete(gs.byCharacter, s.character.Id)
	gs.broadcastRoomUpdate(s.roomId)

	s.joined = false
	s.roomId = ""
}

func (gs *GameServer) handleNpcChat(nc npcChat) {
	// the NPC may have left or the room may be gone by the time the
	// generated reply lands
	if _, ok := gs.registry.Member(nc.roomId, nc.character.Id); !ok {
		return
	}

	entry := types.ChatEntry{
		CharacterId:   nc.character.Id,
		CharacterName: nc.character.Name,
		Message:       nc.message,
		Timestamp:     Now(),
		RoomId:        nc.roomId,
	}

	if err := gs.registry.AppendChat(nc.roomId, entry); err != nil {
		return
	}

	gs.stats.Incr(stats.NumChatMessages)
	gs.broadcast(nc.roomId, &ServerMessage{Timestamp: entry.Timestamp, ChatBroadcast: &entry})
	go gs.logChat(entry)
}

func (gs *GameServer) triggerNpcReplies(roomId string, entry types.ChatEntry) {
	if gs.npc == nil {
		return
	}

	members, err := gs.registry.Members(roomId)
	if err != nil {
		return
	}

	conversation, err := gs.registry.RecentChat(roomId, npcContextLimit)
	if err != nil {
		return
	}

	for _, m := range members {
		if !m.IsAi || m.Id == entry.CharacterId {
			continue
		}
		go gs.npcReply(roomId, m, conversation, entry.Message)
	}
}

// npcReply runs off-loop; the result re-enters the run loop as an
// ordinary chat event so room mutation stays serialized.
func (gs *GameServer) npcReply(roomId string, persona types.Character, conversation []types.ChatEntry, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), npcReplyTimeout)
	defer cancel()

	reply, err := gs.npc.Reply(ctx, persona, conversation, prompt)
	if err != nil {
		if !errors.Is(err, ai.ErrRateLimited) {
			gs.log.Printf("npc reply for %q: %v", persona.Name, err)
		}
		return
	}

	select {
	case gs.npcChatChan <- npcChat{roomId: roomId, character: persona, message: reply}:
	default:
		gs.log.Printf("npc chat channel full, dropping reply for room %q", roomId)
	}
}

func (gs *GameServer) privateHistory(characterId string) *history.History[types.PrivateMessageEntry] {
	h, ok := gs.pmHistory[characterId]
	if !ok {
		h = history.New[types.PrivateMessageEntry](PrivateHistoryCap)
		gs.pmHistory[characterId] = h
	}
	return h
}

func (gs *GameServer) removeFromRoomSet(roomId string, s *Session) {
	if set, ok := gs.roomSessions[roomId]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(gs.roomSessions, roomId)
		}
	}
}

func (gs *GameServer) broadcastRoomUpdate(roomId string) {
	members, err := gs.registry.Members(roomId)
	if err != nil {
		// room destroyed with its last member
		return
	}

	gs.broadcast(roomId, &ServerMessage{
		Timestamp: Now(),
		RoomUpdate: &RoomUpdate{
			RoomId:      roomId,
			Characters:  members,
			MemberCount: len(members),
		},
	})
}

// broadcast fans msg out to every session currently in the room. Slow
// sessions drop; they never stall the loop.
func (gs *GameServer) broadcast(roomId string, msg *ServerMessage) {
	for s := range gs.roomSessions[roomId] {
		s.queueMessage(msg)
	}
}

func (gs *GameServer) logChat(entry types.ChatEntry) {
	if err := gs.eventLog.LogChatMessage(database.ChatLog{
		RoomId:        entry.RoomId,
		CharacterId:   entry.CharacterId,
		CharacterName: entry.CharacterName,
		Content:       entry.Message,
		CreatedAt:     entry.Timestamp,
	}); err != nil {
		gs.log.Println("event log: chat message:", err)
	}
}

func (gs *GameServer) logPrivateMessage(entry types.PrivateMessageEntry) {
	if err := gs.eventLog.LogPrivateMessage(database.PrivateMessageLog{
		SenderId:  entry.CharacterId,
		TargetId:  entry.TargetCharacterId,
		Content:   entry.Message,
		CreatedAt: entry.Timestamp,
	}); err != nil {
		gs.log.Println("event log: private message:", err)
	}
}

func (gs *GameServer) logInteraction(entry database.InteractionLog) {
	if err := gs.eventLog.LogInteraction(entry); err != nil {
		gs.log.Println("event log: interaction:", err)
	}
}
