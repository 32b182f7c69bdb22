// ABOUTME: Registration and login calls returning credentials for the session store.
// ABOUTME: Neither call reads or writes the session itself.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Credentials is what a successful register or login returns.
type Credentials struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Name                 string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *Credentials `json:"data"`
}

// RegisterUser creates an account.
func (c *Client) RegisterUser(ctx context.Context, email, password, passwordConfirmation, name string) (*Credentials, error) {
	return c.authenticate(ctx, "register user", "/api/user/register", registerRequest{
		Email:                strings.TrimSpace(email),
		Password:             password,
		PasswordConfirmation: passwordConfirmation,
		Name:                 strings.TrimSpace(name),
	})
}

// Login exchanges an email and password for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	return c.authenticate(ctx, "login", "/api/user/login", loginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (*Credentials, error) {
	raw, err := c.do(ctx, op, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var res authResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, c.decodeErr(op, raw, err)
	}
	if !res.Success {
		return nil, &Error{Kind: KindServer, Op: op, Message: res.Message}
	}
	if res.Data == nil || res.Data.Token == "" || res.Data.UserID <= 0 {
		return nil, c.decodeErr(op, raw, errors.New("response missing token or user id"))
	}
	return res.Data, nil
}
