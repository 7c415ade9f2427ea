package users

import "time"

// User is a signed-in teacher. School and grade level prefill batch settings
// in the client.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	SchoolName string    `json:"schoolName"`
	GradeLevel string    `json:"gradeLevel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile holds the fields a teacher may edit.
type Profile struct {
	FullName   string
	SchoolName string
	GradeLevel string
}
