// internal/snapshot/snapshot.go
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"libracirc/internal/borrow"
	"libracirc/internal/catalog"
	"libracirc/internal/directory"
	"libracirc/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the flat-file representation of the whole in-memory system.
type State struct {
	SavedAt  time.Time         `json:"saved_at"`
	Books    []*catalog.Book   `json:"books"`
	Users    []UserState       `json:"users"`
	Requests []*borrow.Request `json:"requests"`
	Records  []*borrow.Record  `json:"records"`
}

// UserState carries credentials explicitly, since directory.User hides them
// from its JSON form.
type UserState struct {
	Username     string               `json:"username"`
	FullName     string               `json:"full_name,omitempty"`
	Role         directory.Role       `json:"role"`
	Active       bool                 `json:"active"`
	CreatedAt    time.Time            `json:"created_at"`
	PasswordHash string               `json:"password_hash,omitempty"`
	Salt         string               `json:"salt,omitempty"`
	Stats        directory.StaffStats `json:"stats"`
}

// Capture assembles a snapshot of the current state.
func Capture(ctx context.Context, cat catalog.Service, dir directory.Service, requests *borrow.RequestStore, records *borrow.RecordStore) *State {
	users := dir.Export(ctx)
	userStates := make([]UserState, 0, len(users))
	for _, user := range users {
		userStates = append(userStates, UserState{
			Username:     user.Username,
			FullName:     user.FullName,
			Role:         user.Role,
			Active:       user.Active,
			CreatedAt:    user.CreatedAt,
			PasswordHash: user.PasswordHash,
			Salt:         user.Salt,
			Stats:        user.Stats,
		})
	}

	return &State{
		SavedAt:  time.Now(),
		Books:    cat.ListBooks(ctx),
		Users:    userStates,
		Requests: requests.All(),
		Records:  records.All(),
	}
}

// Apply restores a snapshot into the live services and stores.
func Apply(ctx context.Context, state *State, cat catalog.Service, dir directory.Service, requests *borrow.RequestStore, records *borrow.RecordStore) {
	cat.Restore(ctx, state.Books)

	users := make([]*directory.User, 0, len(state.Users))
	for _, u := range state.Users {
		users = append(users, &directory.User{
			Username:     u.Username,
			FullName:     u.FullName,
			Role:         u.Role,
			Active:       u.Active,
			CreatedAt:    u.CreatedAt,
			PasswordHash: u.PasswordHash,
			Salt:         u.Salt,
			Stats:        u.Stats,
		})
	}
	dir.Restore(ctx, users)

	requests.Restore(state.Requests)
	records.Restore(state.Records)

	// restored loans would otherwise leave the gauge at zero and let
	// subsequent returns drive it negative
	metrics.ActiveLoans.Set(float64(records.CountActive()))
}

// Save writes the state to path atomically via a temp file and rename.
func Save(path string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Load reads a state file written by Save.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}
