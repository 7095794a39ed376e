package domain

import "strings"

type PartyKind uint8

const (
	PartyUser PartyKind = iota + 1
	PartyBot
)

// botID: строковое представление бота в хранилище и на проводе.
const botID = "bot"

// Party описывает участника переписки, это пользователь с id либо бот.
type Party struct {
	Kind PartyKind
	ID   string
}

var Bot = Party{Kind: PartyBot}

func User(id string) Party {
	return Party{Kind: PartyUser, ID: id}
}

// ParseParty: "bot" — бот, любая другая непустая строка — пользователь.
func ParseParty(s string) (Party, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Party{}, ErrInvalidParty
	case botID:
		return Bot, nil
	default:
		return User(s), nil
	}
}

func (p Party) String() string {
	switch p.Kind {
	case PartyBot:
		return botID
	case PartyUser:
		return p.ID
	default:
		return ""
	}
}

func (p Party) IsZero() bool { return p.Kind == 0 }
func (p Party) IsBot() bool  { return p.Kind == PartyBot }

func (p Party) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Party) UnmarshalText(b []byte) error {
	parsed, err := ParseParty(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
