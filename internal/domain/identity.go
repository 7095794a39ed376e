package domain

type IdentityKind string

const (
	IdentityUser     IdentityKind = "user"
	IdentityEmployee IdentityKind = "employee"
	IdentityBot      IdentityKind = "bot"
)

type Identity struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind IdentityKind `json:"kind"`
}

// BotIdentity: бот не хранится в справочниках и разрешается всегда.
var BotIdentity = Identity{ID: botID, Name: "Assistant", Kind: IdentityBot}
