package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/pixelgrove/metaverse/internal/registry"
	"github.com/pixelgrove/metaverse/internal/server"
	"github.com/pixelgrove/metaverse/internal/types"
)

type CreateRoomRequest struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (s *MetaverseApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *MetaverseApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.eventLog.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewServiceUnavailableError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *MetaverseApp) listRooms(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, s.registry.ListActiveRooms())
}

func (s *MetaverseApp) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.registry.CreateRoom(req.Id, req.Name, req.Capacity)
	if err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, registry.ErrRoomExists):
			errResp = NewConflictError()
		case errors.Is(err, registry.ErrInvalidCapacity):
			errResp = NewBadRequestError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, room)
}

func (s *MetaverseApp) getRoomMessages(w http.ResponseWriter, r *http.Request) {
	roomId := r.URL.Query().Get("room")
	if roomId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	offset, err := queryInt(r, "offset")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	entries, err := s.registry.ChatHistory(roomId, offset, limit)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, registry.ErrRoomNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// clients render newest messages first
	slices.Reverse(entries)
	s.writeJson(w, http.StatusOK, entries)
}

// getChatLogs serves the persisted chat log, which outlives room
// destruction and history eviction.
func (s *MetaverseApp) getChatLogs(w http.ResponseWriter, r *http.Request) {
	roomId := r.URL.Query().Get("room")
	if roomId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	logs, err := s.eventLog.GetChatMessages(roomId, limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var entries []types.ChatEntry
	for _, l := range logs {
		entries = append(entries, types.ChatEntry{
			CharacterId:   l.CharacterId,
			CharacterName: l.CharacterName,
			Message:       l.Content,
			Timestamp:     l.CreatedAt,
			RoomId:        l.RoomId,
		})
	}

	s.writeJson(w, http.StatusOK, entries)
}

func (s *MetaverseApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	session := server.NewSession(conn, s.gs, s.log)
	s.gs.RegisterChan <- session

	go session.Write()
	go session.Read()
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
