package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored shape of a registered user. Password holds the bcrypt
// hash, never the plaintext, and is excluded from every response via the
// Public view below.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	DOB            string               `bson:"dob" json:"dob"`
	Bio            string               `bson:"bio" json:"bio"`
	Friends        []primitive.ObjectID `bson:"friends" json:"friends"`
	FriendRequests []primitive.ObjectID `bson:"friendRequests" json:"friendRequests"`
	Posts          []primitive.ObjectID `bson:"posts" json:"posts"`
}

// Comment is embedded in its parent post and has no identity of its own.
type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Text      string               `bson:"text" json:"text"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
}

// PublicUser is the password-free view returned by every read endpoint.
type PublicUser struct {
	ID             primitive.ObjectID   `json:"_id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	DOB            string               `json:"dob"`
	Bio            string               `json:"bio"`
	Friends        []primitive.ObjectID `json:"friends"`
	FriendRequests []primitive.ObjectID `json:"friendRequests"`
	Posts          []primitive.ObjectID `json:"posts"`
}

func Public(u User) PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		DOB:            u.DOB,
		Bio:            u.Bio,
		Friends:        orEmpty(u.Friends),
		FriendRequests: orEmpty(u.FriendRequests),
		Posts:          orEmpty(u.Posts),
	}
}

func PublicAll(us []User) []PublicUser {
	out := make([]PublicUser, 0, len(us))
	for _, u := range us {
		out = append(out, Public(u))
	}
	return out
}

// CommentDetail is a comment with its author expanded.
type CommentDetail struct {
	User      PublicUser `json:"user"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PostDetail is a post with its owner and comment authors expanded.
type PostDetail struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      PublicUser           `json:"user"`
	Text      string               `json:"text"`
	Image     string               `json:"image,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentDetail      `json:"comments"`
}

func orEmpty(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
