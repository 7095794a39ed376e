// Package pagination — непрозрачные курсоры (created_at, id) для постраничной выдачи.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cwrk-planet/chat-service/pkg/errs"
)

var ErrInvalidCursor = fmt.Errorf("invalid cursor: %w", errs.ErrInvalidInput)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode: пустая строка — «с начала», nil без ошибки.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: empty position", ErrInvalidCursor)
	}
	return &c, nil
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Next: курсор на последний элемент, если страница заполнена целиком.
func Next(n, limit int, createdAt time.Time, id string) string {
	if n == 0 || n < limit {
		return ""
	}
	next, err := Encode(Cursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return ""
	}
	return next
}
