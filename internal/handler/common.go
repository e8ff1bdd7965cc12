package handler

import (
	"strconv"

	"neighbourhood/internal/middleware"
	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

// fail 按错误自带的状态码返回
func fail(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"msg": err.Error()})
}

func authedUserID(c *gin.Context) uint64 {
	v, _ := c.Get(middleware.ContextUserIDKey)
	return v.(uint64)
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func pathID(c *gin.Context) uint64 {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return id
}

// currentUser 读取登录用户完整记录；失败时已写响应
func currentUser(c *gin.Context, users *service.UserService) (*model.User, bool) {
	user, err := users.Profile(authedUserID(c))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return user, true
}
