package types

import "time"

// Achievements is computed elsewhere and only read here.
type Achievements struct {
	UserID       string        `json:"userID" db:"user_id"`
	Level        int           `json:"level" db:"level"`
	Points       int           `json:"points" db:"points"`
	Badges       []Badge       `json:"badges" db:"badges"`
	Achievements []Achievement `json:"achievements" db:"achievements"`
	UpdatedAt    *time.Time    `json:"updatedAt" db:"updated_at"`
}

type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

type Achievement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Progress  int    `json:"progress"`
	Target    int    `json:"target"`
	Completed bool   `json:"completed"`
}

// EmptyAchievements is returned for users without a computed document yet.
func EmptyAchievements(userID string) Achievements {
	return Achievements{
		UserID:       userID,
		Level:        1,
		Badges:       []Badge{},
		Achievements: []Achievement{},
	}
}
