package backend

import (
	"context"
	"net/http"
)

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is the session returned by sign-up and sign-in.
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

func (c *Client) SignUp(ctx context.Context, email, password, username string) (*AuthResponse, error) {
	var out AuthResponse
	in := credentials{Email: email, Password: password}
	if username != "" {
		in.Data = map[string]any{"username": username}
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
