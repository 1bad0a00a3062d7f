package service

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is an expected failure with a status code and a message that is
// safe to show to the caller. Anything that is not an *Error is internal.
type Error struct {
	Kind    Kind
	Code    int
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Reason so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Reason == t.Reason
}

func notFound(reason, message string) *Error {
	return &Error{Kind: KindNotFound, Code: http.StatusNotFound, Reason: reason, Message: message}
}

func conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Code: http.StatusBadRequest, Reason: reason, Message: message}
}

func invalid(reason, message string) *Error {
	return &Error{Kind: KindValidation, Code: http.StatusBadRequest, Reason: reason, Message: message}
}

var (
	// friendship
	ErrRecipientNotFound = notFound("RecipientNotFound", "User not found")
	ErrRequestNotFound   = notFound("RequestNotFound", "Friend request not found")
	ErrFriendNotFound    = notFound("FriendNotFound", "Friend not found")
	ErrDuplicateRequest  = conflict("DuplicateRequest", "You have already sent a request to this user")
	ErrReciprocalRequest = conflict("ReciprocalRequest", "You have received a request from this user")
	ErrAlreadyFriends    = conflict("AlreadyFriends", "Users are already friends")
	ErrSelfFriendship    = invalid("SelfFriendship", "You cannot send a friend request to yourself")
	ErrConcurrentUpdate  = &Error{Kind: KindConflict, Code: http.StatusConflict, Reason: "ConcurrentUpdate", Message: "The record was changed by another request, please retry"}

	// reactions
	ErrTargetNotFound    = notFound("TargetNotFound", "Target not found")
	ErrInvalidEmoji      = invalid("InvalidEmoji", "Invalid emoji")
	ErrInvalidTargetType = invalid("InvalidTargetType", "Invalid target type")

	// accounts
	ErrUserNotFound  = notFound("UserNotFound", "User not found")
	ErrUserExists    = &Error{Kind: KindConflict, Code: http.StatusConflict, Reason: "UserExists", Message: "User already exists"}
	ErrWrongPassword = invalid("WrongPassword", "Wrong password")
	ErrInvalidCode   = invalid("InvalidVerificationCode", "Invalid verification code")
	ErrInvalidInput  = invalid("InvalidInput", "Invalid input")
	ErrUnauthorized  = &Error{Kind: KindUnauthorized, Code: http.StatusUnauthorized, Reason: "Unauthorized", Message: "Unauthorized"}

	// blogs and reviews
	ErrBlogNotFound   = notFound("BlogNotFound", "Blog not found")
	ErrReviewNotFound = notFound("ReviewNotFound", "Review not found")
	ErrNotAuthor      = &Error{Kind: KindForbidden, Code: http.StatusForbidden, Reason: "NotAuthor", Message: "Only the author can change this"}
)

// TargetNotFound names the missing target in the message.
func TargetNotFound(targetType string) *Error {
	return notFound(ErrTargetNotFound.Reason, targetType+" not found")
}

// InvalidInput reports a request field problem with a custom message.
func InvalidInput(message string) *Error {
	return invalid(ErrInvalidInput.Reason, message)
}
