package entity

// User is the locally stored demo profile.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
