package domain

// AvatarID identifies an entry in the avatar catalog.
type AvatarID string

// DefaultAvatar is assigned to new profiles.
const DefaultAvatar AvatarID = "default"

// Avatar is a selectable profile picture.
type Avatar struct {
	ID    AvatarID `json:"id"`
	Emoji string   `json:"emoji"`
	Name  string   `json:"name"`
}

var avatars = []Avatar{
	{ID: "default", Emoji: "🌱", Name: "Sprout"},
	{ID: "tree", Emoji: "🌳", Name: "Tree"},
	{ID: "flower", Emoji: "🌸", Name: "Flower"},
	{ID: "sunflower", Emoji: "🌻", Name: "Sunflower"},
	{ID: "cactus", Emoji: "🌵", Name: "Cactus"},
	{ID: "book", Emoji: "📚", Name: "Bookworm"},
	{ID: "star", Emoji: "⭐", Name: "Star Reader"},
	{ID: "butterfly", Emoji: "🦋", Name: "Butterfly"},
	{ID: "bee", Emoji: "🐝", Name: "Busy Bee"},
	{ID: "owl", Emoji: "🦉", Name: "Wise Owl"},
	{ID: "fox", Emoji: "🦊", Name: "Clever Fox"},
	{ID: "cat", Emoji: "🐱", Name: "Cozy Cat"},
	{ID: "dragon", Emoji: "🐉", Name: "Book Dragon"},
	{ID: "unicorn", Emoji: "🦄", Name: "Unicorn"},
	{ID: "rainbow", Emoji: "🌈", Name: "Rainbow"},
	{ID: "mushroom", Emoji: "🍄", Name: "Mushroom"},
}

// Avatars returns the avatar catalog in display order.
func Avatars() []Avatar {
	out := make([]Avatar, len(avatars))
	copy(out, avatars)
	return out
}

// LookupAvatar returns the avatar for id.
func LookupAvatar(id AvatarID) (Avatar, bool) {
	for _, a := range avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}
