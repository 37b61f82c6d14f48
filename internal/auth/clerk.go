package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
)

const ClerkAdminRole = "admin"

// ClerkDirectory treats Clerk users whose public metadata carries the admin
// role as administrators.
type ClerkDirectory struct {
	role  string
	users func(ctx context.Context, email string) ([]*clerk.User, error)
}

func NewClerkDirectory(clerkKey string) *ClerkDirectory {
	clerk.SetKey(clerkKey)

	return &ClerkDirectory{
		role:  ClerkAdminRole,
		users: listClerkUsers,
	}
}

func listClerkUsers(ctx context.Context, email string) ([]*clerk.User, error) {
	list, err := clerkuser.List(ctx, &clerkuser.ListParams{EmailAddresses: []string{email}})
	if err != nil {
		return nil, err
	}
	return list.Users, nil
}

func (c *ClerkDirectory) IsAdmin(ctx context.Context, nick, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	users, err := c.users(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to list clerk users: %w", err)
	}

	for _, usr := range users {
		if !clerkNickMatches(usr, nick) {
			continue
		}
		if clerkRole(usr) == c.role {
			return true, nil
		}
	}
	return false, nil
}

func clerkNickMatches(usr *clerk.User, nick string) bool {
	nick = strings.TrimSpace(nick)
	if nick == "" || usr.Username == nil || *usr.Username == "" {
		return true
	}
	return strings.EqualFold(*usr.Username, nick)
}

func clerkRole(usr *clerk.User) string {
	if len(usr.PublicMetadata) == 0 {
		return ""
	}
	var metadata struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(usr.PublicMetadata, &metadata); err != nil {
		authLogger.Warn().Err(err).Str("user_id", usr.ID).Msg("Failed to decode clerk public metadata")
		return ""
	}
	return metadata.Role
}
