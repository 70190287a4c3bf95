package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixelgrove/metaverse/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Session is one connected client's transport handle. It is bound to at
// most one character and one room at a time; the binding fields are
// owned by the game server's run loop and never touched by the pumps.
type Session struct {
	conn       *websocket.Conn
	gameServer *GameServer
	log        *log.Logger
	send       chan *ServerMessage
	stop       chan struct{}
	stopOnce   sync.Once

	// bound identity, mutated only by the run loop
	character types.Character
	roomId    string
	joined    bool
}

func NewSession(conn *websocket.Conn, gs *GameServer, l *log.Logger) *Session {
	return &Session{
		conn:       conn,
		gameServer: gs,
		log:        l,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
	}
}

func (s *Session) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.log.Println("write exiting")
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				s.log.Println("failed to serialize message:", err)
				continue
			}

			if !s.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (s *Session) Read() {
	defer func() {
		s.conn.Close()
		s.cleanup()
		s.log.Println("read exiting")
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(appData string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// malformed events are tolerated, not answered
			s.log.Println("error parsing message:", err)
			continue
		}

		msg.session = s
		s.enqueue(&msg)
	}
}

// enqueue hands the event to the run loop without blocking the read
// pump. Joins get an explicit error when the server is saturated; every
// other event is silently dropped.
func (s *Session) enqueue(msg *ClientMessage) {
	select {
	case s.gameServer.EventChan <- msg:
	default:
		s.log.Println("event channel full, dropping client event")
		if msg.Join != nil {
			s.queueMessage(NewServiceUnavailableError(msg.Join.RoomId))
		}
	}
}

func (s *Session) queueMessage(msg *ServerMessage) bool {
	select {
	case s.send <- msg:
	default:
		s.log.Println("failed to send message to session, channel is full")
		return false
	}

	return true
}

func (s *Session) writeMessage(msgType int, msg []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := s.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			s.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (s *Session) stopSession() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) cleanup() {
	s.gameServer.DeRegisterChan <- s
	s.stopSession()
}
