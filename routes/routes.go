package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"ripple/posts"
	"ripple/users"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddUserRoutes(router *httprouter.Router, h *users.Handler) {
	router.POST("/api/register", h.Register)
	router.GET("/api/users", h.ListUsers)
	router.GET("/api/users/:id/friends", h.ListFriends)
	router.POST("/api/users/:id/friends", h.SendFriendRequest)
	router.PATCH("/api/users/:id/friends/:friendId", h.ResolveFriendRequest)
}

func AddPostRoutes(router *httprouter.Router, h *posts.Handler) {
	router.GET("/api/posts", h.ListPosts)
	router.POST("/api/posts", h.CreatePost)
	router.GET("/api/posts/:id", h.GetPost)
	router.PATCH("/api/posts/:id", h.UpdatePost)
	router.DELETE("/api/posts/:id", h.DeletePost)
	router.POST("/api/posts/:id/like", h.LikePost)
	router.POST("/api/posts/:id/comment", h.CommentPost)
}
