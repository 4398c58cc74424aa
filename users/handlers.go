package users

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"ripple/db"
	"ripple/models"
	"ripple/rdx"
	"ripple/utils"
)

const genericErr = "Something went wrong. Please try again later."

type Handler struct {
	store Store
	cache *rdx.Cache
}

func NewHandler(store Store, cache *rdx.Cache) *Handler {
	return &Handler{store: store, cache: cache}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		DOB      string `json:"dob"`
		Bio      string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	user := models.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       string(hashed),
		DOB:            input.DOB,
		Bio:            input.Bio,
		Friends:        []primitive.ObjectID{},
		FriendRequests: []primitive.ObjectID{},
		Posts:          []primitive.ObjectID{},
	}

	if _, err := h.store.CreateUser(ctx, user); err != nil {
		log.Printf("create user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "User registered successfully"})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cached []models.PublicUser
	if h.cache.GetJSON(ctx, rdx.UsersKey, &cached) {
		utils.RespondWithJSON(w, http.StatusOK, cached)
		return
	}

	all, err := h.store.ListUsers(ctx)
	if err != nil {
		log.Printf("list users: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	out := models.PublicAll(all)
	h.cache.SetJSON(ctx, rdx.UsersKey, out)
	utils.RespondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.store.GetUser(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("get user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	friends, err := h.store.ListUsersByID(ctx, user.Friends)
	if err != nil {
		log.Printf("list friends: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.PublicAll(friends))
}

func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	requester, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var input struct {
		FriendID string `json:"friendId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	recipient, err := primitive.ObjectIDFromHex(input.FriendID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid friend ID")
		return
	}

	if err := h.store.AddFriendRequest(ctx, requester, recipient); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("add friend request: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Friend request sent successfully"})
}

func (h *Handler) ResolveFriendRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := utils.ObjectIDParam(ps, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	friendID, err := utils.ObjectIDParam(ps, "friendId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid friend ID")
		return
	}

	var input struct {
		Accepted bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := h.store.ResolveFriendRequest(ctx, userID, friendID, input.Accepted); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("resolve friend request: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, genericErr)
		return
	}

	h.cache.Invalidate(ctx, rdx.UsersKey, rdx.PostsKey)

	msg := "Friend request rejected successfully"
	if input.Accepted {
		msg = "Friend request accepted successfully"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": msg})
}
