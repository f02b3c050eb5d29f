package fakeapi

import (
	"sort"
	"strings"
	"sync"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"golang.org/x/crypto/bcrypt"
)

var errDuplicateEmail = errors.New("user with this email already exists.")

type account struct {
	user         users.User
	passwordHash []byte
}

// userRepo keeps accounts in memory. Returned users are copies.
type userRepo struct {
	accounts   map[int64]*account
	emailIDs   map[string]int64 // lower-cased email to user id
	nextID     int64
	bcryptCost int
	lock       sync.RWMutex
}

func newUserRepo(bcryptCost int) *userRepo {
	return &userRepo{
		accounts:   make(map[int64]*account),
		emailIDs:   make(map[string]int64),
		bcryptCost: bcryptCost,
	}
}

func (ur *userRepo) Create(data users.RegisterData) (*users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), ur.bcryptCost)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to hash password")
	}

	role := users.RoleUser
	if data.Role != "" {
		role = users.RoleType(strings.ToUpper(string(data.Role)))
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := strings.ToLower(data.Email)
	if _, ok := ur.emailIDs[key]; ok {
		return nil, errDuplicateEmail
	}
	ur.nextID++
	u := users.User{
		ID:          ur.nextID,
		Email:       data.Email,
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		FullName:    strings.TrimSpace(data.FirstName + " " + data.LastName),
		Role:        role,
		RoleDisplay: roleDisplay(role),
		Phone:       data.Phone,
	}
	ur.accounts[u.ID] = &account{user: u, passwordHash: hash}
	ur.emailIDs[key] = u.ID
	return u.Clone(), nil
}

// Authenticate returns the user owning email when password matches.
func (ur *userRepo) Authenticate(email, password string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.emailIDs[strings.ToLower(email)]
	var acc *account
	if ok {
		acc = ur.accounts[id]
	}
	ur.lock.RUnlock()

	if acc == nil {
		return nil, errors.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, errors.ErrUnauthorized
	}
	return acc.user.Clone(), nil
}

func (ur *userRepo) GetByID(id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	acc, ok := ur.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return acc.user.Clone(), nil
}

// Update applies fn to the stored user and returns the result.
func (ur *userRepo) Update(id int64, fn func(u *users.User) error) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	acc, ok := ur.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	updated := acc.user
	oldEmail := strings.ToLower(updated.Email)
	if err := fn(&updated); err != nil {
		return nil, err
	}

	newEmail := strings.ToLower(updated.Email)
	if newEmail != oldEmail {
		if _, taken := ur.emailIDs[newEmail]; taken {
			return nil, errDuplicateEmail
		}
		delete(ur.emailIDs, oldEmail)
		ur.emailIDs[newEmail] = id
	}
	updated.FullName = strings.TrimSpace(updated.FirstName + " " + updated.LastName)
	acc.user = updated
	return updated.Clone(), nil
}

// ChangePassword replaces the password hash when oldPassword matches.
func (ur *userRepo) ChangePassword(id int64, oldPassword, newPassword string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	acc, ok := ur.accounts[id]
	if !ok {
		return errors.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(oldPassword)); err != nil {
		return errors.ErrUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), ur.bcryptCost)
	if err != nil {
		return errors.Wrapf(err, "failed to hash password")
	}
	acc.passwordHash = hash
	return nil
}

func (ur *userRepo) List() []*users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.User, 0, len(ur.accounts))
	for _, acc := range ur.accounts {
		list = append(list, acc.user.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func roleDisplay(role users.RoleType) string {
	switch role {
	case users.RoleAdmin:
		return "Administrateur"
	default:
		return "Utilisateur"
	}
}
