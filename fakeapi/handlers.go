package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/utils"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
)

const maxUploadSize = 10 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *users.User `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LoginHandler issues a token pair for valid credentials.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		u, err := s.users.Authenticate(req.Email, req.Password)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}

		access, err := s.tokens.CreateAccessToken(u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		refresh, err := s.tokens.CreateRefreshToken(u.ID)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Access: access, Refresh: refresh, User: u})
	}
}

// RegisterHandler creates an account. It does not log the user in.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerPayload
		if !decodeJSON(w, r, &payload) {
			return
		}

		if fields := s.fieldErrors(payload); fields != nil {
			writeJSON(w, http.StatusBadRequest, fields)
			return
		}
		if payload.Password != payload.Password2 {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"password": {"Password fields didn't match."}})
			return
		}

		u, err := s.users.Create(payload.registerData())
		if errors.Is(err, errDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {err.Error()}})
			return
		}
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// RefreshHandler trades a live refresh token for a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
			return
		}

		userID, err := s.tokens.ResolveRefreshToken(req.Refresh)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		u, err := s.users.GetByID(userID)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		access, err := s.tokens.CreateAccessToken(u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access})
	}
}

// LogoutHandler blacklists the given refresh token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failLogout.Load() {
			writeDetail(w, http.StatusInternalServerError, "Logout is unavailable")
			return
		}

		var req logoutRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.tokens.RevokeRefreshToken(req.RefreshToken); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid refresh token"})
			return
		}
		writeDetail(w, http.StatusOK, "Successfully logged out")
	}
}

// ProfileHandler returns the caller's profile.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.users.GetByID(userIDFromContext(r.Context()))
		if err != nil {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// ProfileUpdateHandler applies a partial JSON update.
func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update users.ProfileUpdate
		if !decodeJSON(w, r, &update) {
			return
		}
		if update.Email != nil {
			if err := s.validate.Var(*update.Email, "required,email"); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"Enter a valid email address."}})
				return
			}
		}

		u, err := s.users.Update(userIDFromContext(r.Context()), func(u *users.User) error {
			applyProfileUpdate(u, update)
			return nil
		})
		s.writeProfile(w, u, err)
	}
}

// ProfileUploadHandler accepts a multipart form carrying profile fields and
// an optional avatar file.
func (s *Server) ProfileUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeDetail(w, http.StatusBadRequest, "Multipart form expected")
			return
		}

		var update users.ProfileUpdate
		for field, dst := range map[string]**string{
			"email":      &update.Email,
			"first_name": &update.FirstName,
			"last_name":  &update.LastName,
			"phone":      &update.Phone,
		} {
			if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
				v := values[0]
				*dst = &v
			}
		}

		var avatar string
		if files := r.MultipartForm.File["avatar"]; len(files) > 0 {
			avatar = fmt.Sprintf("/media/avatars/%s-%s", uuid.NewString(), path.Base(files[0].Filename))
		}

		u, err := s.users.Update(userIDFromContext(r.Context()), func(u *users.User) error {
			applyProfileUpdate(u, update)
			if avatar != "" {
				u.Avatar = avatar
			}
			return nil
		})
		s.writeProfile(w, u, err)
	}
}

func (s *Server) writeProfile(w http.ResponseWriter, u *users.User, err error) {
	switch {
	case errors.Is(err, errDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {err.Error()}})
	case err != nil:
		writeDetail(w, http.StatusNotFound, "Not found.")
	default:
		writeJSON(w, http.StatusOK, u)
	}
}

// applyProfileUpdate copies the fields present in update onto u.
func applyProfileUpdate(u *users.User, update users.ProfileUpdate) {
	u.Email = utils.ValueOr(update.Email, u.Email)
	u.FirstName = utils.ValueOr(update.FirstName, u.FirstName)
	u.LastName = utils.ValueOr(update.LastName, u.LastName)
	u.Phone = utils.ValueOr(update.Phone, u.Phone)
}

// ChangePasswordHandler replaces the caller's password.
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var change passwordChangePayload
		if !decodeJSON(w, r, &change) {
			return
		}
		if fields := s.fieldErrors(change); fields != nil {
			writeJSON(w, http.StatusBadRequest, fields)
			return
		}

		err := s.users.ChangePassword(userIDFromContext(r.Context()), change.OldPassword, change.NewPassword)
		if errors.Is(err, errors.ErrUnauthorized) {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
			return
		}
		if err != nil {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeDetail(w, http.StatusOK, "Password updated successfully")
	}
}

// SalesStatsHandler returns the seeded sales aggregate.
func (s *Server) SalesStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.catalog.Get().Sales)
	}
}

// UsersHandler lists every account. Admin only.
func (s *Server) UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeList(w, s.users.List())
	}
}

func (s *Server) listHandler(pick func(Catalog) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeList(w, pick(s.catalog.Get()))
	}
}

// writeList writes items as a bare array or, when the catalog asks for it, as
// a paginated envelope.
func (s *Server) writeList(w http.ResponseWriter, items any) {
	data, err := json.Marshal(items)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		list = []json.RawMessage{}
	}

	if !s.catalog.Get().Paginate {
		writeJSON(w, http.StatusOK, list)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(list),
		"next":     nil,
		"previous": nil,
		"results":  list,
	})
}

// fieldErrors runs struct validation and renders failures the way the
// backend does: field name to a list of messages.
func (s *Server) fieldErrors(v any) map[string][]string {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"non_field_errors": {err.Error()}}
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], auth.Describe(fe))
	}
	return fields
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
