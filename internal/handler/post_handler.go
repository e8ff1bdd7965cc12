package handler

import (
	"net/http"
	"strconv"

	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc   *service.PostService
	users *service.UserService
}

func NewPostHandler(svc *service.PostService, users *service.UserService) *PostHandler {
	return &PostHandler{svc: svc, users: users}
}

type PostCreateReq struct {
	Community string `json:"community"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Pinned    bool   `json:"pinned"`
}

// PostUpdateReq 指针字段区分"未提交"与"提交空值"
type PostUpdateReq struct {
	Title   *string `json:"title"`
	Message *string `json:"message"`
}

type PinReq struct {
	Pinned bool `json:"pinned"`
}

type HideReq struct {
	Hidden bool `json:"hidden"`
}

type PostTagReq struct {
	Tag string `json:"tag"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req PostCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), user, req.Community, req.Title, req.Message, req.Pinned)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Get(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	post, err := h.svc.GetPost(pathID(c), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ListByCommunity(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	page := queryInt(c, "page")
	size := queryInt(c, "size")
	list, err := h.svc.ListByCommunity(c.Param("title"), page, size, user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// ListByCommunityCursor 游标分页，响应携带下一页游标
func (h *PostHandler) ListByCommunityCursor(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
	lastTS, _ := strconv.ParseInt(c.Query("last_ts"), 10, 64)
	size := queryInt(c, "size")
	list, nextID, nextTS, err := h.svc.ListByCommunityCursor(c.Param("title"), lastID, lastTS, size, user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "next_id": nextID, "next_ts": nextTS})
}

func (h *PostHandler) Update(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req PostUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Message != nil {
		updates["message"] = *req.Message
	}
	post, err := h.svc.UpdatePost(user, pathID(c), updates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), user, pathID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) SetPinned(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req PinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.SetPinned(user, pathID(c), req.Pinned); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) SetHidden(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req HideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.SetHidden(user, pathID(c), req.Hidden); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) Tag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req PostTagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.TagPost(user, pathID(c), req.Tag); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) Untag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.UntagPost(user, pathID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) ListTags(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListTags(pathID(c), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
