package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/notecraft/notecraft/internal/auth"
)

// maxCredentialBytes bounds sign-in and sign-up bodies
const maxCredentialBytes = 8 << 10

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or a form post. form reports which.
func readCredentials(w http.ResponseWriter, r *http.Request) (c credentials, form bool, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentialBytes)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err = json.NewDecoder(r.Body).Decode(&c)
		return c, false, err
	}
	if err = r.ParseForm(); err != nil {
		return c, true, err
	}
	c.Email = r.PostFormValue("email")
	c.Password = r.PostFormValue("password")
	return c, true, nil
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.gate.Provider().SignUp, http.StatusCreated)
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.gate.Provider().SignIn, http.StatusOK)
}

func (h *Handler) handleCredentials(w http.ResponseWriter, r *http.Request, open func(ctx context.Context, email, password string) (*auth.Session, error), status int) {
	c, form, err := readCredentials(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := open(r.Context(), c.Email, c.Password)
	if err != nil {
		status := authStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Authentication failed", "err", err)
			h.writeError(w, "authentication failed, please retry", status)
			return
		}
		h.writeError(w, err.Error(), status)
		return
	}

	h.gate.SetCookie(w, session)
	slog.Info("Signed in", "user_id", session.UserID)
	if form {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.writeJSON(w, status, session)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.gate.SignOut(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.gate.CurrentSession(r)
	if !ok {
		h.writeError(w, "sign in required", http.StatusUnauthorized)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}
