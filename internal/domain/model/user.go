package model

import (
	"time"
)

const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Email          string    `json:"email,omitempty"`
	Mobile         string    `json:"mobile"`
	Address        string    `json:"address"`
	AadharNumber   string    `json:"aadharCardNumber"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	IsVoted        bool      `json:"isVoted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
