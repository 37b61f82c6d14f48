package model

import "strings"

type ProfileField string

const (
	FieldNick  ProfileField = "nick"
	FieldEmail ProfileField = "email"
	FieldLink  ProfileField = "link"
)

// UserProfile is the commenter identity typed into the composer header.
type UserProfile struct {
	Nick    string `json:"nick"`
	Email   string `json:"email"`
	Link    string `json:"link"`
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

func (p UserProfile) HasBasicInfo() bool {
	return strings.TrimSpace(p.Nick) != "" && strings.TrimSpace(p.Email) != ""
}

// Get returns the value of a header field.
func (p UserProfile) Get(field ProfileField) string {
	switch field {
	case FieldNick:
		return p.Nick
	case FieldEmail:
		return p.Email
	case FieldLink:
		return p.Link
	}
	return ""
}

// Identifying reports whether editing field changes who the commenter is.
func (f ProfileField) Identifying() bool {
	return f == FieldNick || f == FieldEmail
}
