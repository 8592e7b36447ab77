package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/middleware"
	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// NotificationReader is the part of the notification store the API reads.
type NotificationReader interface {
	ForRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, recipientID, id uint) error
}

// Subscriber opens a live notification stream for one user.
type Subscriber interface {
	Subscribe(recipientID uint) (string, <-chan models.Notification, func())
}

var errNotificationNotFound = apperror.NewNotFound("Notification not found", nil)

// NotificationController lists stored notifications and streams new ones.
type NotificationController struct {
	store     NotificationReader
	hub       Subscriber
	heartbeat time.Duration
}

func NewNotificationController(store NotificationReader, hub Subscriber) *NotificationController {
	return &NotificationController{store: store, hub: hub, heartbeat: 25 * time.Second}
}

// List returns the caller's notifications newest first with the unread count.
func (n *NotificationController) List(ctx *gin.Context) {
	uid := middleware.CurrentUserID(ctx)
	page := pageFromQuery(ctx)
	items, err := n.store.ForRecipient(ctx.Request.Context(), uid, page.Offset(), page.Limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	unread, err := n.store.UnreadCount(ctx.Request.Context(), uid)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items":      items,
		"unread":     unread,
		"pagination": page,
	})
}

func (n *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	err = n.store.MarkRead(ctx.Request.Context(), middleware.CurrentUserID(ctx), id)
	if errors.Is(err, stores.ErrNotFound) {
		utils.Fail(ctx, errNotificationNotFound)
		return
	}
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.OK(ctx, "Notification marked as read")
}

// Stream pushes the caller's notifications as Server-Sent Events until the
// client disconnects or the server shuts down.
func (n *NotificationController) Stream(ctx *gin.Context) {
	if n.hub == nil {
		utils.Error(ctx, http.StatusServiceUnavailable, "Notification stream unavailable")
		return
	}
	uid := middleware.CurrentUserID(ctx)
	subID, events, cancel := n.hub.Subscribe(uid)
	defer cancel()

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	ctx.Render(-1, sse.Event{Event: "ready", Data: gin.H{"subscriber": subID}})
	ctx.Writer.Flush()

	heartbeat := time.NewTicker(n.heartbeat)
	defer heartbeat.Stop()
	done := ctx.Request.Context().Done()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			ctx.Render(-1, sse.Event{
				Id:    strconv.FormatUint(uint64(ev.ID), 10),
				Event: "notification",
				Data:  ev,
			})
			return true
		case <-heartbeat.C:
			ctx.Render(-1, sse.Event{Event: "ping", Data: time.Now().Unix()})
			return true
		}
	})
}
