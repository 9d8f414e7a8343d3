package entity

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Nick     string `json:"nick"`
	Email    string `json:"-"`
	Password string `json:"-"`
	Role     string `json:"-"`
	Image    string `json:"image"`
}

// PublicUser is the only owner shape that leaves the service.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Nick     string `json:"nick"`
	Image    string `json:"image"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Nick:     u.Nick,
		Image:    u.Image,
	}
}
