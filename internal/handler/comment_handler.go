package handler

import (
	"net/http"

	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc   *service.CommentService
	users *service.UserService
}

func NewCommentHandler(svc *service.CommentService, users *service.UserService) *CommentHandler {
	return &CommentHandler{svc: svc, users: users}
}

type CommentCreateReq struct {
	PostID  uint64  `json:"post_id"`
	Message string  `json:"message"`
	ReplyTo *uint64 `json:"reply_to"`
}

type CommentEditReq struct {
	Message string `json:"message"`
}

type VoteReq struct {
	Direction string `json:"direction"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req CommentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	comment, err := h.svc.CreateComment(c.Request.Context(), user, req.PostID, req.Message, req.ReplyTo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Get(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	comment, err := h.svc.GetComment(pathID(c), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// ListByPost :id 为帖子 id
func (h *CommentHandler) ListByPost(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	page := queryInt(c, "page")
	size := queryInt(c, "size")
	list, err := h.svc.ListByPost(pathID(c), page, size, user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommentHandler) Edit(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req CommentEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	comment, err := h.svc.EditComment(user, pathID(c), req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) ListEdits(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListEdits(user, pathID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), user, pathID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommentHandler) Vote(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req VoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	changed, err := h.svc.Vote(user, pathID(c), req.Direction)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *CommentHandler) Unvote(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	changed, err := h.svc.Unvote(user, pathID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *CommentHandler) SetHidden(c *gin.Context) {
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
