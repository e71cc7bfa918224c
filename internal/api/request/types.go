// Package request holds API request bodies. Each checks its own required
// fields in Validate.
package request

import (
	"errors"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Validator is a request body that can reject itself
type Validator interface {
	Validate() error
}

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for starting a game. Both fields
// are optional.
type CreateGameRequest struct {
	Seed  *uint64 `json:"seed,omitempty"`
	Moves int     `json:"moves,omitempty"`
}

// Cell is a board coordinate
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SwapRequest is the request body for swapping two tiles
type SwapRequest struct {
	From *Cell `json:"from"`
	To   *Cell `json:"to"`
}

// AutoPlayRequest is the request body for letting a bot play. Moves 0
// plays until the game ends.
type AutoPlayRequest struct {
	Strategy string `json:"strategy,omitempty"`
	Moves    int    `json:"moves,omitempty"`
}

func (r *CreateGuestRequest) Validate() error {
	if r.DisplayName == "" {
		return errors.New("display_name is required")
	}
	return nil
}

func (r *RegisterRequest) Validate() error {
	switch {
	case r.Username == "":
		return errors.New("username is required")
	case r.Password == "":
		return errors.New("password is required")
	case r.DisplayName == "":
		return errors.New("display_name is required")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	switch {
	case r.Username == "":
		return errors.New("username is required")
	case r.Password == "":
		return errors.New("password is required")
	}
	return nil
}

func (r *CreateGameRequest) Validate() error {
	if r.Moves < 0 {
		return errors.New("moves must not be negative")
	}
	return nil
}

func (r *SwapRequest) Validate() error {
	if r.From == nil || r.To == nil {
		return errors.New("from and to are required")
	}
	return nil
}

// Positions returns the two cells being swapped; call after Validate
func (r *SwapRequest) Positions() (model.Position, model.Position) {
	return model.Position{Row: r.From.Row, Col: r.From.Col}, model.Position{Row: r.To.Row, Col: r.To.Col}
}

func (r *AutoPlayRequest) Validate() error {
	if r.Moves < 0 {
		return errors.New("moves must not be negative")
	}
	return nil
}
