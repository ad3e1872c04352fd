package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Role      primitive.ObjectID `bson:"role" json:"roleId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserProfile is a user as returned by the API, with the role name resolved.
type UserProfile struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
	Role     string             `json:"role"`
}
