package posts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/db"
	"ripple/models"
	"ripple/rdx"
	"ripple/users"
	"ripple/utils"
)

const genericErr = "Something went wrong. Please try again later."

type Handler struct {
	store Store
	users users.Store
	cache *rdx.Cache
}

func NewHandler(store Store, userStore users.Store, cache *rdx.Cache) *Handler {
	return &Handler{store: store, users: userStore, cache: cache}
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cached []models.PostDetail
	if h.cache.GetJSON(ctx, rdx.PostsKey, &cached) {
		utils.RespondWithJSON(w, http.StatusOK, cached)
		return
	}

	all, err := h.store.ListPosts(ctx)
	if err != nil {
		log.Printf("list posts: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	out, err := h.expand(ctx, all)
	if err != nil {
		log.Printf("expand posts: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.SetJSON(ctx, rdx.PostsKey, out)
	utils.RespondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.store.GetPost(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		log.Printf("get post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	out, err := h.expand(ctx, []models.Post{post})
	if err != nil {
		log.Printf("expand post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, out[0])
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
		Image  string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	owner, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	post := models.Post{
		User:      owner,
		Text:      input.Text,
		Image:     input.Image,
		CreatedAt: time.Now().UTC(),
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
	}

	if _, err := h.store.CreatePost(ctx, post); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("create post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Post created successfully"})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var input struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := h.store.UpdatePost(ctx, id, input.Text, input.Image); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("update post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Post updated successfully"})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.store.DeletePost(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("delete post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusAccepted, utils.M{"message": "Post deleted successfully"})
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var input struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if _, err := h.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("get user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	if err := h.store.LikePost(ctx, id, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("like post: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Post liked successfully"})
}

func (h *Handler) CommentPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var input struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if _, err := h.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("get user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	comment := models.Comment{
		User:      userID,
		Text:      input.Text,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.AddComment(ctx, id, comment); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("add comment: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Comment added successfully"})
}

// expand resolves the owner and comment authors of each post into
// password-free views.
func (h *Handler) expand(ctx context.Context, all []models.Post) ([]models.PostDetail, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, p := range all {
		if !seen[p.User] {
			seen[p.User] = true
			ids = append(ids, p.User)
		}
		for _, c := range p.Comments {
			if !seen[c.User] {
				seen[c.User] = true
				ids = append(ids, c.User)
			}
		}
	}

	resolved, err := h.users.ListUsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(resolved))
	for _, u := range resolved {
		byID[u.ID] = models.Public(u)
	}

	out := make([]models.PostDetail, 0, len(all))
	for _, p := range all {
		detail := models.PostDetail{
			ID:        p.ID,
			User:      byID[p.User],
			Text:      p.Text,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
			Likes:     p.Likes,
			Comments:  make([]models.CommentDetail, 0, len(p.Comments)),
		}
		if detail.Likes == nil {
			detail.Likes = []primitive.ObjectID{}
		}
		for _, c := range p.Comments {
			detail.Comments = append(detail.Comments, models.CommentDetail{
				User:      byID[c.User],
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
			})
		}
		out = append(out, detail)
	}
	return out, nil
}
