package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Username  string               `bson:"username" json:"username"`
	Password  string               `bson:"password" json:"-"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// PublicUser is the projection returned by register and login.
type PublicUser struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
	}
}

// Profile is the cached read model served by the profile endpoint.
type Profile struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Followers []string  `json:"followers"`
	Following []string  `json:"following"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Followers: hexIDs(u.Followers),
		Following: hexIDs(u.Following),
		CreatedAt: u.CreatedAt,
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
