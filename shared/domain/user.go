package domain

import "time"

type User struct {
	Id        UserId
	Email     Email
	PassHash  string
	CreatedAt time.Time
}
