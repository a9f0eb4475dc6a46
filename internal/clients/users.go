package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type userDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type UsersClient struct {
	baseURL string
	http    *http.Client
}

func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	return &UsersClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *UsersClient) GetEmail(ctx context.Context, userID int64) (string, error) {
	var resp envelope[userDTO]
	if err := getJSON(ctx, c.http, fmt.Sprintf("%s/api/v1/users/%d", c.baseURL, userID), &resp); err != nil {
		return "", fmt.Errorf("user %d lookup: %w", userID, err)
	}
	return resp.Data.Email, nil
}
