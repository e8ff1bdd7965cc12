package handler

import (
	"net/http"

	"neighbourhood/internal/model"
	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc   *service.CommunityService
	users *service.UserService
}

func NewCommunityHandler(svc *service.CommunityService, users *service.UserService) *CommunityHandler {
	return &CommunityHandler{svc: svc, users: users}
}

type CommunityCreateReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CommunityUpdateReq 指针字段区分"未提交"与"提交空值"
type CommunityUpdateReq struct {
	Description *string `json:"description"`
}

type KickReq struct {
	Username string `json:"username"`
	Period   string `json:"period"`
}

type ModeratorReq struct {
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
}

type TagAddReq struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

type RulesReq struct {
	Rules []RuleReq `json:"rules"`
}

type RuleReq struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
}

func (h *CommunityHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	community, err := h.svc.CreateCommunity(c.Request.Context(), user, req.Title, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	community, err := h.svc.GetCommunity(c.Param("title"), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	page := queryInt(c, "page")
	size := queryInt(c, "size")
	list, err := h.svc.ListCommunities(page, size, user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Update(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	updates := make(map[string]any)
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	community, err := h.svc.UpdateCommunity(user, c.Param("title"), updates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Remove(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.RemoveCommunity(user, c.Param("title")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.Join(user, c.Param("title")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.Leave(user, c.Param("title")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Kick(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req KickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.Kick(user, c.Param("title"), req.Username, req.Period); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

/*
版主管理
*/

func (h *CommunityHandler) ListModerators(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListModerators(c.Param("title"), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) AddModerator(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req ModeratorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.AddModerator(user, c.Param("title"), req.Username, req.Permissions); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RemoveModerator(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.RemoveModerator(user, c.Param("title"), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) SetModeratorPermissions(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req ModeratorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.SetModeratorPermissions(user, c.Param("title"), req.Username, req.Permissions); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

/*
标签词表与社区规则
*/

func (h *CommunityHandler) ListTags(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListTags(c.Param("title"), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) AddTag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req TagAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.AddTag(user, c.Param("title"), req.Tag, req.Description); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RemoveTag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.svc.RemoveTag(user, c.Param("title"), c.Param("tag")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) ListRules(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListRules(c.Param("title"), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) ReplaceRules(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req RulesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	rules := make([]model.CommunityRule, 0, len(req.Rules))
	for _, r := range req.Rules {
		rules = append(rules, model.CommunityRule{Rule: r.Rule, Description: r.Description})
	}
	if err := h.svc.ReplaceRules(user, c.Param("title"), rules); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
