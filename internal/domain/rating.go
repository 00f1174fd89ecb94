package domain

import "time"

// RatingDimensions are one user's scores for a book. Overall is required;
// the others are optional and nil when not given.
type RatingDimensions struct {
	Overall   int  `json:"overall" validate:"required,min=1,max=5"`
	Character *int `json:"character" validate:"omitempty,min=1,max=5"`
	Pacing    *int `json:"pacing" validate:"omitempty,min=1,max=5"`
	Storyline *int `json:"storyline" validate:"omitempty,min=1,max=5"`
	Writing   *int `json:"writing" validate:"omitempty,min=1,max=5"`
	Spicy     *int `json:"spicy" validate:"omitempty,min=1,max=5"`
}

// Rating is the stored rating of (user, book). A resubmission replaces every dimension.
type Rating struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
	RatingDimensions
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
