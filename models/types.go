package models

import "time"

// Black Market item names
const (
	ItemPasswordSecurity = "Password Security"
	ItemFederalReserve   = "Federal Reserve"
	ItemSourceCodeMarket = "Source Code Market"
	ItemSWAT             = "SWAT"
)

// SWAT request status constants
const (
	SwatPending    = "pending"
	SwatInProgress = "in_progress"
	SwatCompleted  = "completed"
)

// Domain types

type Team struct {
	ID    string `json:"-"`
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Money int64  `json:"money"`
}

type User struct {
	ID        string `json:"-"`
	UUID      string `json:"uuid"`
	Handle    string `json:"handle"`
	TeamID    string `json:"-"`
	Algorithm string `json:"algorithm"`
	Password  string `json:"-"` // hash, never the plaintext
	Team      *Team  `json:"team,omitempty"`
}

type Box struct {
	ID         string      `json:"-"`
	UUID       string      `json:"uuid"`
	Name       string      `json:"name"`
	SourceCode *SourceCode `json:"source_code,omitempty"`
}

type SourceCode struct {
	ID          string `json:"-"`
	UUID        string `json:"uuid"`
	BoxID       string `json:"-"`
	Price       int64  `json:"price"`
	FileName    string `json:"file_name"`
	Description string `json:"description"`
}

type WallOfSheep struct {
	ID        string    `json:"id"`
	Preimage  string    `json:"preimage"`
	CrackerID string    `json:"-"`
	VictimID  string    `json:"-"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type SwatRequest struct {
	ID        string    `json:"-"`
	UUID      string    `json:"uuid"`
	UserID    string    `json:"-"`
	TargetID  string    `json:"-"`
	Bribe     int64     `json:"bribe"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"-"` // nil for broadcasts
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Federal Reserve responses

type AccountsResponse struct {
	Accounts []string `json:"accounts"`
}

type UserAccount struct {
	Account   string `json:"account"`
	Algorithm string `json:"algorithm"`
	Password  string `json:"password"`
}

// handle -> account details, hash included
type UsersResponse struct {
	Users map[string]UserAccount `json:"users"`
}

type AccountInfoResponse struct {
	Name    string   `json:"name"`
	Balance int64    `json:"balance"`
	Users   []string `json:"users"`
}

// ReserveResponse carries either a success message or a user error
type ReserveResponse struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InvalidDataResponse keeps the capitalised key older clients read
type InvalidDataResponse struct {
	Error string `json:"Error"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
