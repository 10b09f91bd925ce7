package api

import (
	"time"

	domaintask "github.com/example/lockin/domain/task"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/confirmation"
	"github.com/example/lockin/modules/group"
	"github.com/example/lockin/modules/leaderboard"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// handlers holds the ports every route calls.
type handlers struct {
	tasks         task.TaskPort
	confirmations confirmation.ConfirmationPort
	inbox         notification.InboxPort
	groups        group.GroupAdminPort
	accounts      account.StatsPort
	leaderboard   leaderboard.LeaderboardPort
	hub           *Hub
}

// routes registers the REST API under /api/v1 and the notification socket.
// middleware runs in order in front of both.
func (h *handlers) routes(app *fiber.App, middleware ...fiber.Handler) {
	app.Get("/health", h.health)

	ws := app.Group("/ws")
	for _, mw := range middleware {
		ws.Use(mw)
	}
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/notifications", websocket.New(h.notificationSocket))

	api := app.Group("/api/v1")
	for _, mw := range middleware {
		api.Use(mw)
	}

	api.Post("/tasks", h.createTask)
	api.Get("/tasks/:id", h.getTask)
	api.Patch("/tasks/:id", h.editTask)
	api.Post("/tasks/:id/complete", h.completeTask)
	api.Delete("/tasks/:id", h.deleteTask)

	api.Post("/confirmations", h.requestConfirmation)
	api.Post("/confirmations/:taskId/confirm", h.confirmTask)
	api.Post("/confirmations/:taskId/deny", h.denyTask)

	api.Patch("/notifications/:id", h.updateNotification)
	api.Delete("/notifications/:id", h.deleteNotification)

	api.Post("/groups", h.createGroup)
	api.Get("/groups/:id", h.getGroup)
	api.Delete("/groups/:id", h.deleteGroup)
	api.Post("/groups/:id/members", h.addMember)
	api.Delete("/groups/:id/members/:userId", h.removeMember)
	api.Put("/groups/:id/policy", h.setPolicy)
	api.Get("/groups/:id/leaderboard/tasks", h.leaderboardByTasks)
	api.Get("/groups/:id/leaderboard/time", h.leaderboardByTime)

	api.Post("/leaderboard/completions", h.recordCompletion)
	api.Post("/leaderboard/reset", h.resetWeek)

	users := api.Group("/users/:userId")
	users.Put("/", h.ensureAccount)
	users.Get("/stats", h.stats)
	users.Get("/tasks", h.listTasks)
	users.Get("/groups", h.listGroups)
	users.Get("/confirmations", h.listConfirmations)
	users.Get("/confirmations/pending", h.listPendingConfirmations)
	users.Get("/notifications", h.listNotifications)
}

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "healthy"})
}

// Tasks

func (h *handlers) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	t, err := h.tasks.Create(c.UserContext(), task.CreateInput{
		OwnerID:       actingUser(c, req.OwnerID),
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *handlers) getTask(c *fiber.Ctx) error {
	t, err := h.tasks.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *handlers) editTask(c *fiber.Ctx) error {
	var req EditTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	t, err := h.tasks.Edit(c.UserContext(), c.Params("id"), domaintask.Changes{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *handlers) completeTask(c *fiber.Ctx) error {
	var req CompleteTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	t, err := h.tasks.Complete(c.UserContext(), c.Params("id"), req.ActualTime)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *handlers) deleteTask(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) listTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(TaskListResponse{Tasks: tasks})
}

// Confirmations

func (h *handlers) requestConfirmation(c *fiber.Ctx) error {
	var req RequestConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	id, err := h.confirmations.RequestConfirmation(c.UserContext(), confirmation.RequestInput{
		TaskID:      req.TaskID,
		RequestedBy: actingUser(c, req.RequestedBy),
		PeerIDs:     req.PeerIDs,
		ActualTime:  req.ActualTime,
		TaskName:    req.TaskName,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(RequestConfirmationResponse{ConfirmationID: id})
}

func (h *handlers) confirmTask(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	conf, err := h.confirmations.ConfirmTask(c.UserContext(), c.Params("taskId"), actingUser(c, req.PeerID))
	if err != nil {
		return err
	}
	return c.JSON(conf)
}

func (h *handlers) denyTask(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	conf, err := h.confirmations.DenyTask(c.UserContext(), c.Params("taskId"), actingUser(c, req.PeerID))
	if err != nil {
		return err
	}
	return c.JSON(conf)
}

func (h *handlers) listConfirmations(c *fiber.Ctx) error {
	list, err := h.confirmations.GetConfirmations(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(ConfirmationListResponse{Confirmations: list})
}

func (h *handlers) listPendingConfirmations(c *fiber.Ctx) error {
	list, err := h.confirmations.GetPendingConfirmationsForPeer(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(ConfirmationListResponse{Confirmations: list})
}

// Notifications

func (h *handlers) listNotifications(c *fiber.Ctx) error {
	list, err := h.inbox.List(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(NotificationListResponse{Notifications: list})
}

func (h *handlers) updateNotification(c *fiber.Ctx) error {
	var req UpdateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	n, err := h.inbox.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(n)
}

func (h *handlers) deleteNotification(c *fiber.Ctx) error {
	if err := h.inbox.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Groups

func (h *handlers) createGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	g, err := h.groups.CreateGroup(c.UserContext(), group.CreateGroupRequest{
		OwnerID:              actingUser(c, req.OwnerID),
		Name:                 req.Name,
		ConfirmationRequired: req.ConfirmationRequired,
		InviteUserIDs:        req.InviteUserIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

func (h *handlers) getGroup(c *fiber.Ctx) error {
	g, err := h.groups.GetGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(g)
}

func (h *handlers) listGroups(c *fiber.Ctx) error {
	groups, err := h.groups.GroupsContaining(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(group.GroupsContainingResponse{Groups: groups})
}

func (h *handlers) deleteGroup(c *fiber.Ctx) error {
	if err := h.groups.DeleteGroup(c.UserContext(), c.Params("id"), actingUser(c, c.Query("userId"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) addMember(c *fiber.Ctx) error {
	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := h.groups.AddMember(c.UserContext(), c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true})
}

func (h *handlers) removeMember(c *fiber.Ctx) error {
	if err := h.groups.RemoveMember(c.UserContext(), c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) setPolicy(c *fiber.Ctx) error {
	var req PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := h.groups.SetConfirmationPolicy(c.UserContext(), c.Params("id"), req.ConfirmationRequired); err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true})
}

// Leaderboards

func (h *handlers) leaderboardByTasks(c *fiber.Ctx) error {
	entries, err := h.leaderboard.GetLeaderboardByTasks(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(LeaderboardResponse{GroupID: c.Params("id"), OrderBy: string(leaderboard.ByTasks), Entries: entries})
}

func (h *handlers) leaderboardByTime(c *fiber.Ctx) error {
	entries, err := h.leaderboard.GetLeaderboardByTime(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(LeaderboardResponse{GroupID: c.Params("id"), OrderBy: string(leaderboard.ByTime), Entries: entries})
}

func (h *handlers) recordCompletion(c *fiber.Ctx) error {
	var req RecordCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	err := h.leaderboard.RecordCompletion(c.UserContext(), actingUser(c, req.UserID), req.ActualTime, req.GroupID, req.Confirmed)
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true})
}

func (h *handlers) resetWeek(c *fiber.Ctx) error {
	var req ResetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid request body")
		}
	}
	weekStart := time.Now()
	if req.WeekStart != nil {
		weekStart = *req.WeekStart
	}
	n, err := h.leaderboard.ResetWeeklyStats(c.UserContext(), weekStart)
	if err != nil {
		return err
	}
	return c.JSON(ResetResponse{Groups: n})
}

// Accounts

func (h *handlers) ensureAccount(c *fiber.Ctx) error {
	var req EnsureAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}
	acc, err := h.accounts.Ensure(c.UserContext(), c.Params("userId"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(StatsResponse{Account: *acc})
}

func (h *handlers) stats(c *fiber.Ctx) error {
	acc, err := h.accounts.Get(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(StatsResponse{Account: *acc})
}

// notificationSocket keeps a connection registered with the hub until the
// client goes away. Incoming frames are ignored.
func (h *handlers) notificationSocket(c *websocket.Conn) {
	userID := c.Query("userId")
	if id, ok := c.Locals(UserIDKey).(string); ok && id != "" {
		userID = id
	}
	if userID == "" {
		_ = c.WriteJSON(ErrorResponse{Error: "invalid_argument", Message: "userId is required"})
		_ = c.Close()
		return
	}

	cl := &client{id: uuid.NewString(), userID: userID, conn: c}
	if !h.hub.attach(cl) {
		_ = c.Close()
		return
	}
	defer h.hub.detach(cl)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
