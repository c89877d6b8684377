package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
	"github.com/patric-chuzhbe/atomicnotes/internal/notes"
)

const (
	// notesPerPage is the size of the first page; atomicNoteOffset extends it.
	notesPerPage = 3

	maxFormSize = 1 << 20
)

// GetAtomicNotes lists the notes visible to the caller, newest first.
func (rt *Router) GetAtomicNotes(response http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	query := request.URL.Query()

	offset := parseOffset(query.Get("atomicNoteOffset"))
	search := strings.ToLower(query.Get("atomicNoteSearchQuery"))
	_, onlyStarred := query["starred"]

	usr, isAuthenticated := rt.auth.CurrentUser(request)
	isAdmin := rt.auth.IsAdmin(request)

	if onlyStarred && !isAuthenticated {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}

	var starredIDs []string
	if isAuthenticated {
		var err error
		starredIDs, err = rt.users.GetStarredAtomicNoteIDs(ctx, usr.ID)
		if err != nil {
			rt.writeError(response, request, err)
			return
		}
	}

	all, err := rt.notes.GetAll(ctx)
	if err != nil {
		rt.writeError(response, request, err)
		return
	}

	visible := funk.Filter(all, func(note models.Note) bool {
		if !isAdmin && note.Status != models.NoteStatusPublished {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(note.Body), search) {
			return false
		}
		if onlyStarred && !funk.ContainsString(starredIDs, note.ID) {
			return false
		}
		return true
	}).([]models.Note)

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt().After(visible[j].CreatedAt())
	})

	limit := notesPerPage + offset
	page := visible
	if len(page) > limit {
		page = page[:limit]
	}

	writeJSON(response, http.StatusOK, models.NotesPage{
		AtomicNotes:          page,
		HasMoreAtomicNotes:   len(visible) > len(page),
		IsAuthenticated:      isAuthenticated,
		IsAdmin:              isAdmin,
		StarredAtomicNoteIDs: starredIDs,
	})
}

// PostAtomicNotes runs the mutation named by _action.
func (rt *Router) PostAtomicNotes(response http.ResponseWriter, request *http.Request) {
	action, err := decodeActionRequest(request)
	if err != nil {
		rt.writeError(response, request, err)
		return
	}

	if err := rt.validate.Struct(action); err != nil {
		rt.writeError(response, request, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	switch models.Action(action.Action) {
	case models.ActionCreate:
		rt.createNote(response, request, action)
	case models.ActionUpdate:
		rt.updateNote(response, request, action)
	case models.ActionToggleVisibility:
		rt.toggleVisibility(response, request, action)
	case models.ActionToggleStar:
		rt.toggleStar(response, request, action)
	case models.ActionDelete:
		rt.deleteNote(response, request, action)
	default:
		rt.writeError(response, request, fmt.Errorf("%w: invalid action", models.ErrValidation))
	}
}

func (rt *Router) createNote(response http.ResponseWriter, request *http.Request, action models.ActionRequest) {
	if !rt.auth.IsAdmin(request) {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}

	created, err := rt.notes.Create(request.Context(), models.Note{
		ID:          rt.newID(),
		Body:        action.Body,
		DateCreated: rt.now().UTC().Format(models.DateLayout),
		Status:      models.NoteStatusDraft,
	})
	if err != nil {
		rt.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.NoteResponse{AtomicNote: created})
}

func (rt *Router) updateNote(response http.ResponseWriter, request *http.Request, action models.ActionRequest) {
	if !rt.auth.IsAdmin(request) {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}

	body := action.Body
	updated, err := rt.notes.Update(request.Context(), action.NoteID, models.NotePatch{Body: &body})
	if err != nil {
		rt.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.NoteResponse{AtomicNote: updated})
}

func (rt *Router) toggleVisibility(response http.ResponseWriter, request *http.Request, action models.ActionRequest) {
	if !rt.auth.IsAdmin(request) {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}

	status := models.NoteStatus(action.Status)
	if !status.Valid() {
		rt.writeError(response, request, fmt.Errorf("%w: status is invalid", models.ErrValidation))
		return
	}

	if _, err := rt.notes.Update(request.Context(), action.NoteID, models.NotePatch{Status: &status}); err != nil {
		rt.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, struct{}{})
}

func (rt *Router) toggleStar(response http.ResponseWriter, request *http.Request, action models.ActionRequest) {
	usr, ok := rt.auth.CurrentUser(request)
	if !ok {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}
	ctx := request.Context()

	var star bool
	if action.Starred != nil {
		star = *action.Starred
	} else {
		current, err := rt.users.GetStarredAtomicNoteIDs(ctx, usr.ID)
		if err != nil {
			rt.writeError(response, request, err)
			return
		}
		star = !funk.ContainsString(current, action.NoteID)
	}

	var (
		ids []string
		err error
	)
	if star {
		ids, err = rt.users.StarAtomicNote(ctx, usr.ID, action.NoteID)
	} else {
		ids, err = rt.users.UnstarAtomicNote(ctx, usr.ID, action.NoteID)
	}
	if err != nil {
		rt.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.StarredResponse{StarredAtomicNoteIDs: ids})
}

func (rt *Router) deleteNote(response http.ResponseWriter, request *http.Request, action models.ActionRequest) {
	if !rt.auth.IsAdmin(request) {
		rt.writeError(response, request, models.ErrUnauthorized)
		return
	}

	if err := rt.notes.Delete(request.Context(), action.NoteID); err != nil {
		rt.writeError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// decodeActionRequest reads a JSON body, or a urlencoded or multipart form.
func decodeActionRequest(request *http.Request) (models.ActionRequest, error) {
	var action models.ActionRequest

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(request.Body).Decode(&action); err != nil {
			return action, fmt.Errorf("%w: malformed JSON body: %v", models.ErrValidation, err)
		}
		return action, nil
	}

	err := request.ParseMultipartForm(maxFormSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return action, fmt.Errorf("%w: malformed form: %v", models.ErrValidation, err)
	}

	action.Action = request.PostFormValue("_action")
	action.NoteID = request.PostFormValue("atomicNoteId")
	action.Body = request.PostFormValue("atomicNoteBody")
	action.Status = request.PostFormValue("status")
	if values, ok := request.PostForm["starred"]; ok && len(values) > 0 {
		starred, err := strconv.ParseBool(values[0])
		if err != nil {
			return action, fmt.Errorf("%w: starred must be a boolean", models.ErrValidation)
		}
		action.Starred = &starred
	}

	return action, nil
}

func parseOffset(raw string) int {
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0
	}

	return offset
}

func (rt *Router) writeError(response http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		http.Error(response, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrValidation), errors.Is(err, notes.ErrInvalidNote):
		http.Error(response, err.Error(), http.StatusBadRequest)
	case errors.Is(err, notes.ErrNotFound):
		http.Error(response, "Not Found", http.StatusNotFound)
	default:
		logger.Log.Errorw("request failed",
			"method", request.Method,
			"uri", request.RequestURI,
			zap.Error(err),
		)
		http.Error(response, "An unexpected error occurred.", http.StatusInternalServerError)
	}
}

func writeJSON(response http.ResponseWriter, status int, body any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugw("failed to write a response body", zap.Error(err))
	}
}
