package server

import (
	"github.com/gin-gonic/gin"
)

// Router wires the document API and the realtime endpoint. Everything except
// auth requires a bearer token.
func Router(auth *AuthService, handlers *Handlers, realtime *RealtimeHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")

	authHandlers := NewAuthHandlers(auth)
	v1.POST("/auth/register", authHandlers.Register)
	v1.POST("/auth/login", authHandlers.Login)

	authed := v1.Group("")
	authed.Use(AuthMiddleware(auth))
	{
		authed.GET("/chats", handlers.ListChats)
		authed.GET("/chats/between", handlers.GetChatBetween)
		authed.GET("/chats/:id", handlers.GetChat)
		authed.POST("/chats", handlers.CreateChat)

		authed.GET("/messages", handlers.ListMessages)
		authed.GET("/messages/:id", handlers.GetMessage)
		authed.POST("/messages", handlers.CreateMessage)
		authed.PATCH("/messages/:id", handlers.PatchMessage)
		authed.DELETE("/messages/:id", handlers.DeleteMessage)

		authed.GET("/posts", handlers.ListPosts)
		authed.GET("/posts/:id", handlers.GetPost)
		authed.POST("/posts", handlers.CreatePost)
		authed.PUT("/posts/:id", handlers.UpdatePost)
		authed.PATCH("/posts/:id", handlers.PatchPost)
		authed.DELETE("/posts/:id", handlers.DeletePost)

		authed.POST("/profiles", handlers.CreateProfile)
		authed.GET("/profiles/:userID", handlers.GetProfile)
		authed.PUT("/profiles/:userID", handlers.UpdateProfile)
		authed.PATCH("/profiles/:userID", handlers.PatchProfile)

		authed.GET("/realtime", realtime.Handle)
	}

	return r
}
