package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-list-api/internal/config"
	"github.com/iliyamo/todo-list-api/internal/middleware"
	"github.com/iliyamo/todo-list-api/internal/queue"
	"github.com/iliyamo/todo-list-api/internal/repository"
	queue_publisher "github.com/iliyamo/todo-list-api/internal/service"
)

// ItemHandler bundles dependencies for the item CRUD endpoints.  Redis is
// optional; when nil the cache-invalidation calls become no-ops.
type ItemHandler struct {
	Items    *repository.ItemRepo
	CacheCfg config.CacheConfig
	Redis    *redis.Client
}

func NewItemHandler(items *repository.ItemRepo, cacheCfg config.CacheConfig, rdb *redis.Client) *ItemHandler {
	if items == nil {
		panic("nil repository passed to NewItemHandler")
	}
	return &ItemHandler{Items: items, CacheCfg: cacheCfg, Redis: rdb}
}

// ----- DTOs -----

// createItemReq carries the item creation payload.  Deadline arrives as a
// string so the same date formats are accepted in bodies and in query
// parameters.
type createItemReq struct {
	Item      string `json:"item"`
	Notes     string `json:"notes"`
	Category  string `json:"category"`
	Label     string `json:"label"`
	Priority  string `json:"priority"`
	Deadline  string `json:"deadline"`
	Completed *bool  `json:"completed"`
}

// updateItemReq uses pointers for the optional fields so "absent" and
// "set to empty" stay distinguishable on PUT.
type updateItemReq struct {
	Item      string  `json:"item"`
	Notes     *string `json:"notes"`
	Category  *string `json:"category"`
	Label     *string `json:"label"`
	Priority  *string `json:"priority"`
	Deadline  *string `json:"deadline"`
	Completed *bool   `json:"completed"`
}

type completedReq struct {
	Completed *bool `json:"completed"`
}

type listMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}
type listResp struct {
	Items []repository.Item `json:"items"`
	Meta  listMeta          `json:"meta"`
}

// Create handles POST /api/item.
func (h *ItemHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(req.Item)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item text is required"})
	}

	it := repository.Item{
		UserID:   userID,
		Item:     text,
		Notes:    strings.TrimSpace(req.Notes),
		Category: strings.TrimSpace(req.Category),
		Label:    strings.TrimSpace(req.Label),
		Priority: repository.PriorityMedium,
	}
	if p := strings.ToLower(strings.TrimSpace(req.Priority)); p != "" {
		if !validPriority(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
		}
		it.Priority = p
	}
	if req.Deadline != "" {
		t, err := parseDate(req.Deadline)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deadline"})
		}
		it.Deadline = &t
	}
	if req.Completed != nil {
		it.Completed = *req.Completed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Create(ctx, &it); err != nil {
		log.Printf("items: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.afterWrite(c, userID, queue.ActionCreated, &it)
	return c.JSON(http.StatusCreated, it)
}

// List handles GET /api/items with filters and pagination.
func (h *ItemHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	q, err := buildItemQuery(userID, c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Items.Search(ctx, q)
	if err != nil {
		log.Printf("items: search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	totalPages := (total + int64(q.PageSize) - 1) / int64(q.PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	return c.JSON(http.StatusOK, listResp{
		Items: items,
		Meta: listMeta{
			Page:       q.Page,
			Limit:      q.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Update handles PUT /api/item/:id.
func (h *ItemHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(req.Item)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item text is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The lookup is scoped by owner: a foreign item 404s here, before any
	// field of the request is even considered.
	it, err := h.Items.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		log.Printf("items: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	it.Item = text
	if req.Notes != nil {
		it.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Category != nil {
		it.Category = strings.TrimSpace(*req.Category)
	}
	if req.Label != nil {
		it.Label = strings.TrimSpace(*req.Label)
	}
	if req.Priority != nil {
		p := strings.ToLower(strings.TrimSpace(*req.Priority))
		if !validPriority(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
		}
		it.Priority = p
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			it.Deadline = nil
		} else {
			t, err := parseDate(*req.Deadline)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deadline"})
			}
			it.Deadline = &t
		}
	}
	if req.Completed != nil {
		it.Completed = *req.Completed
	}

	if err := h.Items.Update(ctx, it); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		log.Printf("items: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.afterWrite(c, userID, queue.ActionUpdated, it)
	return c.JSON(http.StatusOK, it)
}

// SetCompleted handles PATCH /api/item/:id/completed.
func (h *ItemHandler) SetCompleted(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}
	var req completedReq
	if err := c.Bind(&req); err != nil || req.Completed == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed must be a boolean"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.SetCompleted(ctx, id, userID, *req.Completed)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		log.Printf("items: set completed failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.afterWrite(c, userID, queue.ActionCompleted, it)
	return c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /api/item/:id.
func (h *ItemHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		log.Printf("items: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.afterWrite(c, userID, queue.ActionDeleted, &repository.Item{ID: id, UserID: userID})
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted successfully"})
}

// Me is a simple protected endpoint echoing the verified identity.
func (h *ItemHandler) Me(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       userID,
		"username": middleware.Username(c),
	})
}

// afterWrite invalidates the user's cached list pages and publishes the
// activity event.  Publishing runs in the background and never fails the
// request.
func (h *ItemHandler) afterWrite(c echo.Context, userID uint64, action string, it *repository.Item) {
	middleware.BumpUserCache(c.Request().Context(), h.CacheCfg, h.Redis, userID)

	ev := queue.ItemEvent{
		Action:    action,
		ItemID:    it.ID,
		UserID:    userID,
		Username:  middleware.Username(c),
		Item:      it.Item,
		Completed: it.Completed,
		At:        time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishItemEvent(ctx, ev)
	}()
}
