package domain

import (
	"fmt"

	"github.com/cwrk-planet/chat-service/pkg/errs"
)

var (
	ErrInvalidParty    = fmt.Errorf("invalid party: %w", errs.ErrInvalidInput)
	ErrMissingSender   = fmt.Errorf("senderId is required: %w", errs.ErrInvalidInput)
	ErrMissingReceiver = fmt.Errorf("receiverId is required: %w", errs.ErrInvalidInput)
	ErrMissingRoom     = fmt.Errorf("roomId is required: %w", errs.ErrInvalidInput)
	ErrEmptyText       = fmt.Errorf("text is required: %w", errs.ErrInvalidInput)
	ErrTextTooLong     = fmt.Errorf("message too long: %w", errs.ErrInvalidInput)
	ErrEmptyMessage    = fmt.Errorf("notification message is required: %w", errs.ErrInvalidInput)

	ErrSenderMismatch = fmt.Errorf("senderId does not match the token subject: %w", errs.ErrForbidden)

	ErrNotificationNotFound = fmt.Errorf("notification %w", errs.ErrNotFound)
	ErrIdentityNotFound     = fmt.Errorf("identity %w", errs.ErrNotFound)
	ErrAlreadyExists        = fmt.Errorf("already exists: %w", errs.ErrConflict)
)
