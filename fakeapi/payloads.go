package fakeapi

import "github.com/layebamba/Fadj-Ma-Frontend/users"

// registerPayload carries the backend's registration rules.
type registerPayload struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN USER admin user"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

func (p registerPayload) registerData() users.RegisterData {
	return users.RegisterData{
		Email:     p.Email,
		Password:  p.Password,
		Password2: p.Password2,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Role:      users.RoleType(p.Role),
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	}
}

type passwordChangePayload struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,nefield=OldPassword"`
}
