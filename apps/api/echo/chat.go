package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core/chat"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

type chatApi struct {
	auth     auth
	deps     ServerDeps
	upgrader websocket.Upgrader
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, a auth, deps ServerDeps) {
	api := chatApi{
		auth: a,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	cg := g.Group("/courses/:id/chat")
	cg.GET("/messages", api.history, jwt)
	// the websocket endpoint authenticates itself so rejections can be
	// reported as close codes instead of HTTP statuses
	cg.GET("/ws", api.connect)
}

// history returns the latest messages in chronological order.
func (api *chatApi) history(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	role, err := api.deps.CourseSvc.Resolve(usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "resolving membership")
	}
	if role == course.RoleNone {
		return errHttpForbidden
	}

	limit := api.deps.Conf.Chat.HistoryLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	msgs, err := api.deps.ChatSvc.Recent(id, limit)
	if err != nil {
		return errors.Wrap(err, "querying chat history")
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

// connect upgrades to a websocket and binds the connection to the course
// channel for its lifetime. Anonymous connections close with 4001,
// non-participants with 4003.
func (api *chatApi) connect(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}

	ws, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}

	usr, err := api.socketUser(ctx)
	if err != nil {
		api.closeWith(ws, chat.CloseUnauthenticated, "authentication required")
		return nil
	}

	sess := chat.NewSession(
		api.deps.Broker, api.deps.ChatSvc, api.deps.CourseSvc, api.deps.Logger,
		usr, id, api.deps.Conf.Chat.SendBuffer,
	)
	if err = sess.Connect(); err != nil {
		if errors.Cause(err) == chat.ErrNotParticipant {
			api.closeWith(ws, chat.CloseUnauthorized, "not a course participant")
		} else {
			api.deps.Logger.Error(fmt.Sprintf("chat: connect on course %d: %v", id, err), err)
			api.closeWith(ws, websocket.CloseInternalServerErr, "")
		}
		return nil
	}

	connID := uuid.New().String()
	api.deps.Logger.Debug(fmt.Sprintf("chat: connection %s open user=%s course=%d", connID, usr.Username, id))

	go api.writePump(ws, sess)
	go api.readPump(ws, sess, connID)
	return nil
}

// socketUser extracts the authenticated user from a "token" query param or
// a bearer Authorization header.
func (api *chatApi) socketUser(ctx echo.Context) (user.User, error) {
	raw := ctx.QueryParam("token")
	if raw == "" {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if raw == "" {
		return user.User{}, errUnauthorized
	}

	claims, err := api.auth.parseToken(raw)
	if err != nil {
		return user.User{}, err
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return user.User{}, errUnauthorized
	}
	return api.deps.UserSvc.GetByID(uid)
}

func (api *chatApi) closeWith(ws *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(api.deps.Conf.Chat.WriteTimeout)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = ws.Close()
}

// readPump consumes client frames, one at a time, in receipt order.
func (api *chatApi) readPump(ws *websocket.Conn, sess *chat.Session, connID string) {
	conf := api.deps.Conf.Chat
	defer func() {
		sess.Close()
		_ = ws.Close()
		api.deps.Logger.Debug("chat: connection " + connID + " closed")
	}()

	ws.SetReadLimit(conf.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(conf.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(conf.ReadTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				api.deps.Logger.Warn(fmt.Sprintf("chat: connection %s: %v", connID, err))
			}
			return
		}
		// a failed action aborts that action only, never the session
		if err = sess.HandleAction(data); err != nil {
			api.deps.Logger.Error(fmt.Sprintf("chat: connection %s action: %v", connID, err), err)
		}
	}
}

// writePump forwards session events to the client and keeps the
// connection alive with pings.
func (api *chatApi) writePump(ws *websocket.Conn, sess *chat.Session) {
	conf := api.deps.Conf.Chat
	ticker := time.NewTicker(conf.PingInterval)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case data, ok := <-sess.Events():
			_ = ws.SetWriteDeadline(time.Now().Add(conf.WriteTimeout))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(conf.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
