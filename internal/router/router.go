package router

import (
	"neighbourhood/internal/config"
	"neighbourhood/internal/handler"
	"neighbourhood/internal/middleware"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"
	"neighbourhood/internal/repository/redis"
	"neighbourhood/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	emailCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	db := mysql.DB
	optsSvc := service.NewOptionsService(db, redis.NewOptionsCacheRepository())
	emailSvc := service.NewEmailService(emailCfg)
	userSvc := service.NewUserService(db, optsSvc, emailSvc)
	communitySvc := service.NewCommunityService(db, optsSvc)
	postSvc := service.NewPostService(db, optsSvc)
	commentSvc := service.NewCommentService(db, optsSvc)
	flagSvc := service.NewFlagService(db, optsSvc)

	user := handler.NewUserHandler(userSvc)
	email := handler.NewEmailHandler(emailSvc)
	community := handler.NewCommunityHandler(communitySvc, userSvc)
	post := handler.NewPostHandler(postSvc, userSvc)
	comment := handler.NewCommentHandler(commentSvc, userSvc)
	flag := handler.NewFlagHandler(flagSvc, userSvc)
	admin := handler.NewAdminHandler(flagSvc, postSvc, communitySvc, optsSvc, userSvc)

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.GET("/profile", user.Profile)
		authGroup.PATCH("/profile", user.UpdateProfile)
		authGroup.DELETE("/account", user.DeleteAccount)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.POST("/create", community.Create)
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/:title", community.Get)
		communityGroup.PATCH("/:title", community.Update)
		communityGroup.DELETE("/:title", community.Remove)
		communityGroup.POST("/:title/join", community.Join)
		communityGroup.POST("/:title/leave", community.Leave)
		communityGroup.POST("/:title/kick", community.Kick)

		communityGroup.GET("/:title/moderators", community.ListModerators)
		communityGroup.POST("/:title/moderators", community.AddModerator)
		communityGroup.DELETE("/:title/moderators/:username", community.RemoveModerator)
		communityGroup.PUT("/:title/moderators/permissions", community.SetModeratorPermissions)

		communityGroup.GET("/:title/tags", community.ListTags)
		communityGroup.POST("/:title/tags", community.AddTag)
		communityGroup.DELETE("/:title/tags/:tag", community.RemoveTag)

		communityGroup.GET("/:title/rules", community.ListRules)
		communityGroup.PUT("/:title/rules", community.ReplaceRules)

		communityGroup.GET("/:title/posts", post.ListByCommunity)
		communityGroup.GET("/:title/posts/cursor", post.ListByCommunityCursor)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.POST("/create", post.Create)
		postGroup.GET("/:id", post.Get)
		postGroup.PATCH("/:id", post.Update)
		postGroup.DELETE("/:id", post.Delete)
		postGroup.PUT("/:id/pin", post.SetPinned)
		postGroup.PUT("/:id/hide", post.SetHidden)
		postGroup.POST("/:id/tag", post.Tag)
		postGroup.DELETE("/:id/tag", post.Untag)
		postGroup.GET("/:id/tags", post.ListTags)
		postGroup.GET("/:id/comments", comment.ListByPost)
	}

	// 评论相关接口
	commentGroup := r.Group("/api/comment")
	commentGroup.Use(middleware.AuthMiddleware())
	{
		commentGroup.POST("/create", comment.Create)
		commentGroup.GET("/:id", comment.Get)
		commentGroup.PATCH("/:id", comment.Edit)
		commentGroup.GET("/:id/edits", comment.ListEdits)
		commentGroup.DELETE("/:id", comment.Delete)
		commentGroup.PUT("/:id/vote", comment.Vote)
		commentGroup.DELETE("/:id/vote", comment.Unvote)
		commentGroup.PUT("/:id/hide", comment.SetHidden)
	}

	// 标记相关接口
	flagGroup := r.Group("/api/flag")
	flagGroup.Use(middleware.AuthMiddleware())
	{
		flagGroup.POST("/", flag.Flag)
		flagGroup.DELETE("/", flag.Unflag)
		flagGroup.GET("/:type/:id", flag.List)
		flagGroup.POST("/resolve", flag.Resolve)
	}

	// 管理端接口
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		adminGroup.GET("/dashboard", admin.Dashboard)
		adminGroup.DELETE("/post/:id", admin.PurgePost)
		adminGroup.DELETE("/community/:title", admin.PurgeCommunity)
		adminGroup.GET("/options/:component", admin.GetOptions)
		adminGroup.PUT("/options/:component", admin.UpdateOptions)
	}

	return r
}
