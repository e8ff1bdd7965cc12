package handler

import (
	"net/http"

	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

type FlagHandler struct {
	svc   *service.FlagService
	users *service.UserService
}

func NewFlagHandler(svc *service.FlagService, users *service.UserService) *FlagHandler {
	return &FlagHandler{svc: svc, users: users}
}

type FlagReq struct {
	TargetType string `json:"target_type"`
	TargetID   uint64 `json:"target_id"`
	Label      string `json:"label"`
}

type ResolveReq struct {
	TargetType string `json:"target_type"`
	TargetID   uint64 `json:"target_id"`
	Show       bool   `json:"show"`
}

func (h *FlagHandler) Flag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req FlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.Flag(c.Request.Context(), user, req.TargetType, req.TargetID, req.Label); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *FlagHandler) Unflag(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req FlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.Unflag(user, req.TargetType, req.TargetID, req.Label); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// List :type 为 post / comment / community，:id 为目标 id
func (h *FlagHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.svc.ListForTarget(c.Param("type"), pathID(c), user.IsAdmin())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Resolve 版主清空目标上的全部标记
func (h *FlagHandler) Resolve(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req ResolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.Resolve(user, req.TargetType, req.TargetID, req.Show); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
