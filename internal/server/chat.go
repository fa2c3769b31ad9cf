package server

import (
	"net/http"
	"strings"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/utility"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const maxChatFrameBytes = 4096

// httpStatusFor maps a response status tag to the HTTP status code.
func httpStatusFor(status string) int {
	switch status {
	case assistant.StatusSuccess:
		return http.StatusOK
	case assistant.StatusNotFoundPet:
		return http.StatusNotFound
	case assistant.StatusPetInfoFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// chatHandler answers one message about one pet.
func (s *Server) chatHandler(c echo.Context) error {
	logger := loggerFrom(c)

	var req assistant.Request
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid chat request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, _ := utility.GetUserIDFromContext(c)
	logger.Debug().Str("user_id", userID).Str("pet_id", req.SubjectID).Msg("Chat request received")

	resp := s.assistant.Handle(c.Request().Context(), req)
	return c.JSON(httpStatusFor(resp.Status), resp)
}

// chatSocketHandler keeps one chat session open for a pet at a fixed location.
// Every text frame is a message; every reply is the tagged response object.
func (s *Server) chatSocketHandler(c echo.Context) error {
	logger := loggerFrom(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	session := assistant.Request{SubjectID: strings.TrimSpace(c.QueryParam("pet_id"))}
	if session.Latitude, err = utility.QueryFloat(c, "lat"); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if session.Longitude, err = utility.QueryFloat(c, "lon"); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := session.ValidateTarget(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	conn, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the client.
		logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}
	defer conn.Close()

	s.hub.Register(userID, conn)
	defer s.hub.Unregister(userID, conn)

	conn.SetReadLimit(maxChatFrameBytes)
	ctx := c.Request().Context()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("Chat socket closed unexpectedly")
			}
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}

		req := session
		req.Message = string(payload)

		var reply interface{}
		if err := req.Validate(); err != nil {
			reply = map[string]string{"error": err.Error()}
		} else {
			reply = s.assistant.Handle(ctx, req)
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Error().Err(err).Msg("Failed to write chat reply")
			return nil
		}
	}
}
