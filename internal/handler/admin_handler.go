package handler

import (
	"net/http"

	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端接口，路由统一挂 AdminOnly
type AdminHandler struct {
	flags       *service.FlagService
	posts       *service.PostService
	communities *service.CommunityService
	opts        *service.OptionsService
	users       *service.UserService
}

func NewAdminHandler(flags *service.FlagService, posts *service.PostService,
	communities *service.CommunityService, opts *service.OptionsService,
	users *service.UserService) *AdminHandler {
	return &AdminHandler{
		flags:       flags,
		posts:       posts,
		communities: communities,
		opts:        opts,
		users:       users,
	}
}

type OptionsUpdateReq struct {
	Settings map[string]any `json:"settings"`
}

// Dashboard 当前有标记的帖子与评论
func (h *AdminHandler) Dashboard(c *gin.Context) {
	limit := queryInt(c, "limit")
	list, err := h.flags.Dashboard(limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// PurgePost 硬删除帖子
func (h *AdminHandler) PurgePost(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.posts.PurgePost(user, pathID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// PurgeCommunity 硬删除社区及全部内容
func (h *AdminHandler) PurgeCommunity(c *gin.Context) {
	if err := h.communities.PurgeCommunity(c.Param("title")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *AdminHandler) GetOptions(c *gin.Context) {
	settings, err := h.opts.Get(c.Request.Context(), c.Param("component"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"component": c.Param("component"), "settings": settings})
}

func (h *AdminHandler) UpdateOptions(c *gin.Context) {
	var req OptionsUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Settings == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.opts.Update(c.Request.Context(), c.Param("component"), req.Settings); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
