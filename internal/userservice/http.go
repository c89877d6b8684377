package userservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

// StarredPath is where the router mounts a user's actor.
const StarredPath = "/internal/users/{userID}/starred"

// HTTP calls the actor surface of another instance.
type HTTP struct {
	client *resty.Client
}

// NewHTTP returns a client for the instance at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (h *HTTP) GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error) {
	return h.call(ctx, http.MethodGet, userID, "")
}

func (h *HTTP) StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	return h.call(ctx, http.MethodPost, userID, noteID)
}

func (h *HTTP) UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	return h.call(ctx, http.MethodDelete, userID, noteID)
}

func (h *HTTP) call(ctx context.Context, method, userID, noteID string) ([]string, error) {
	var ids []string

	request := h.client.R().
		SetContext(ctx).
		SetPathParam("userID", userID).
		SetResult(&ids)
	if method != http.MethodGet {
		request.SetBody(models.StarredRequest{ID: noteID})
	}

	response, err := request.Execute(method, StarredPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, response.Request.URL, response.StatusCode())
	}
	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
