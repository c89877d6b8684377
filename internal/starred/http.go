package starred

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

// ServeHTTP exposes the actor as
//
//	GET    /starred               -> JSON array of ids
//	POST   /starred {"id": "..."} -> add, JSON array of ids
//	DELETE /starred {"id": "..."} -> remove, JSON array of ids
//
// Anything else is 404.
func (a *Actor) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	path := strings.Split(strings.TrimPrefix(request.URL.Path, "/"), "/")
	if path[0] != "starred" {
		http.Error(response, "Not Found", http.StatusNotFound)
		return
	}

	var (
		ids []string
		err error
	)

	switch request.Method {
	case http.MethodGet:
		ids, err = a.GetStarred(request.Context())

	case http.MethodPost, http.MethodDelete:
		var body models.StarredRequest
		if decodeErr := json.NewDecoder(request.Body).Decode(&body); decodeErr != nil || body.ID == "" {
			http.Error(response, "Bad Request", http.StatusBadRequest)
			return
		}
		if request.Method == http.MethodPost {
			ids, err = a.AddStarred(request.Context(), body.ID)
		} else {
			ids, err = a.RemoveStarred(request.Context(), body.ID)
		}

	default:
		http.Error(response, "Not Found", http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(response, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(response).Encode(ids); err != nil {
		http.Error(response, err.Error(), http.StatusInternalServerError)
	}
}
