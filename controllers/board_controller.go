package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"carrental-backend/services"
	"carrental-backend/utils"
)

// Maximum wait for any client frame, pings included.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Board interface {
	Latest() (services.BoardSnapshot, bool)
}

type BoardHub interface {
	Register(clientID string, conn *websocket.Conn)
	Unregister(clientID string)
	Send(clientID string, message []byte) error
}

type BoardController struct {
	Board Board
	Hub   BoardHub
}

func NewBoardController(board Board, hub BoardHub) *BoardController {
	return &BoardController{Board: board, Hub: hub}
}

// GetBoard returns the latest published fleet board.
func (ctrl *BoardController) GetBoard(c *gin.Context) {
	snap, ok := ctrl.Board.Latest()
	if !ok {
		utils.JSONError(c, http.StatusServiceUnavailable, "BOARD_NOT_READY", "the fleet board has not been computed yet")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, snap)
}

// ServeWs streams board snapshots to the client. The latest snapshot is
// sent right after registering; a broadcast may race it, so clients keep
// the snapshot with the highest seq.
func (ctrl *BoardController) ServeWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	clientID := uuid.NewString()
	ctrl.Hub.Register(clientID, conn)
	defer func() {
		ctrl.Hub.Unregister(clientID)
		conn.Close()
	}()

	if snap, ok := ctrl.Board.Latest(); ok {
		if msg, err := json.Marshal(snap); err == nil {
			if err := ctrl.Hub.Send(clientID, msg); err != nil {
				log.Printf("WebSocket initial snapshot to %s failed: %v", clientID, err)
				return
			}
		}
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	// Replacing the default handler means answering the ping ourselves.
	// WriteControl may run concurrently with the hub's writes.
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	// Clients only listen; the loop exists to notice disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error: %v", err)
			}
			break
		}
	}
}
