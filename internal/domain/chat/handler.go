package chat

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caresync/caresync/internal/platform/auth"
	"github.com/caresync/caresync/internal/platform/ws"
	"github.com/caresync/caresync/pkg/pagination"
)

type Handler struct {
	svc *Service
	hub *ws.Hub
}

func NewHandler(svc *Service, hub *ws.Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("physician", "nurse", "pharmacist", "front_desk", "patient"))
	g.GET("/rooms", h.ListRooms)
	g.GET("/rooms/:roomId/messages", h.ListMessages)
	g.POST("/rooms/:roomId/messages", h.SendMessage)
}

func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (h *Handler) ListMessages(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByRoom(c.Request().Context(), c.Param("roomId"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// SendMessage persists a message over REST and echoes it to the room's
// real-time members, so HTTP senders and socket senders converge.
func (h *Handler) SendMessage(c echo.Context) error {
	var m Message
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.RoomID = c.Param("roomId")

	p := auth.PrincipalFromContext(c.Request().Context())
	if p.ID != uuid.Nil {
		m.SenderID = p.ID
		m.SenderRole = p.Role
	}

	if err := h.svc.Send(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.hub != nil {
		if data, err := json.Marshal(&m); err == nil {
			h.hub.Broadcast(m.RoomID, ws.Event{
				Type: ws.EventReceiveMessage,
				Room: m.RoomID,
				Data: data,
			})
		}
	}
	return c.JSON(http.StatusCreated, m)
}
