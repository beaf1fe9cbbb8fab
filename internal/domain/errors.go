package domain

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrRequestNotPending  = errors.New("request has already been accepted by another donor")
	ErrRequestNotAccepted = errors.New("request is not in an accepted state")
	ErrOnCooldown         = errors.New("donor is on post-donation cooldown")
	ErrDuplicateEmail     = errors.New("email is already registered")
)
