package domain

// User is a row of the users table.
type User struct {
	Name      string  `json:"name" db:"name"`
	Email     *string `json:"email" db:"email"`
	FullName  *string `json:"full_name" db:"full_name"`
	UserImage *string `json:"user_image" db:"user_image"`
	Enabled   bool    `json:"enabled" db:"enabled"`
}

// DisplayName returns the full name, or the user id when no full name is set.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Name
}

// AssignableUser is an item of the assignable-users listing.
type AssignableUser struct {
	Name     string  `json:"name"`
	FullName *string `json:"full_name"`
	Image    *string `json:"image"`
}

// Assignee is a resolved task assignee in the compact task projection.
type Assignee struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	ID         string  `json:"id"`
	ProfilePic *string `json:"profile_pic"`
}
