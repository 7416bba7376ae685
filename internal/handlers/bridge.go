package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/memohai/contactbridge/internal/bridge"
	"github.com/memohai/contactbridge/internal/service"
	"github.com/memohai/contactbridge/internal/writeplan"
)

// BridgeHandler exposes the dispatcher over HTTP: one-shot invokes on
// POST /api/invoke/:method and a persistent channel on GET /api/channel.
type BridgeHandler struct {
	dispatcher *bridge.Dispatcher
	logger     *slog.Logger
}

func NewBridgeHandler(d *bridge.Dispatcher, log *slog.Logger) *BridgeHandler {
	return &BridgeHandler{
		dispatcher: d,
		logger:     log.With(slog.String("handler", "bridge")),
	}
}

func (h *BridgeHandler) Register(e *echo.Echo) {
	e.POST("/api/invoke/:method", h.Invoke)
	e.GET("/api/channel", h.Channel)
}

// Invoke runs one method call. The request body is the argument map; an
// empty body means no arguments.
func (h *BridgeHandler) Invoke(c echo.Context) error {
	var args map[string]any
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&args); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid argument body"})
		}
	}

	method := c.Param("method")
	result, err := h.dispatcher.Invoke(c.Request().Context(), method, args)
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}

// channelFrame is one message on the persistent channel. Requests carry
// id/method/args; responses echo the id with either result or error.
type channelFrame struct {
	ID     string         `json:"id"`
	Method string         `json:"method,omitempty"`
	Args   map[string]any `json:"args,omitempty"`

	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Channel upgrades to a websocket and serves method calls until the peer
// disconnects. Calls run concurrently on the dispatcher pool; responses are
// matched to requests by id.
func (h *BridgeHandler) Channel(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	reply := func(frame channelFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			h.logger.Warn("channel write failed", slog.Any("error", err))
		}
	}

	for {
		var frame channelFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			break
		}
		wg.Add(1)
		go func(frame channelFrame) {
			defer wg.Done()
			result, err := h.dispatcher.Invoke(ctx, frame.Method, frame.Args)
			out := channelFrame{ID: frame.ID, Result: result}
			if err != nil {
				out = channelFrame{ID: frame.ID, Error: err.Error()}
			}
			reply(out)
		}(frame)
	}
	wg.Wait()
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bridge.ErrNotImplemented), errors.Is(err, service.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, bridge.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, bridge.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, writeplan.ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
