package models

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleRider  UserRole = "rider"
	UserRoleDriver UserRole = "driver"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleRider, UserRoleDriver:
		return true
	}
	return false
}

type User struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Role        UserRole `json:"role" gorm:"column:role;size:50;not null;default:rider"`
	Email       string   `json:"email" gorm:"column:email;size:255;uniqueIndex:user_email_key;not null"`
	FirstName   string   `json:"first_name" gorm:"column:first_name;size:100;not null"`
	LastName    string   `json:"last_name" gorm:"column:last_name;size:100;not null"`
	PhoneNumber string   `json:"phone_number" gorm:"column:phone_number;size:20"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "user"
}

// IsAdmin reports whether the user may call the admin API.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserSummary is the flattened user shape embedded in ride responses.
type UserSummary struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	Role        UserRole `json:"role"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	PhoneNumber string   `json:"phone_number"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
	}
}
