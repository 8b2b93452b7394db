package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edushelf/campusd/internal/apperr"
	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/storage"
)

type CourseContent struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	Title       string  `json:"title"`
	ContentType string  `json:"content_type"`
	Description string  `json:"description"`
	FilePath    *string `json:"file_path,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// AddContent accepts multipart form data: title, content_type, description
// and an optional file part.
func (h *Handler) AddContent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	courseID := chi.URLParam(r, "courseID")

	if _, err := h.ownedCourse(r.Context(), courseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, apperr.Validation("body", "multipart form required"))
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	contentType := strings.TrimSpace(r.FormValue("content_type"))
	description := r.FormValue("description")
	if title == "" {
		h.writeError(w, r, apperr.Validation("title", "required"))
		return
	}
	if contentType == "" {
		h.writeError(w, r, apperr.Validation("content_type", "required"))
		return
	}

	var filePath *string
	if f, fh, err := r.FormFile("file"); err == nil {
		defer f.Close()
		key := storage.CourseKey(courseID, fh.Filename)
		stored, err := h.blobs.Put(key, f)
		if err != nil {
			h.writeError(w, r, apperr.Persistence("store file", err))
			return
		}
		filePath = &stored
	}

	c := CourseContent{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Title:       title,
		ContentType: contentType,
		Description: description,
		FilePath:    filePath,
		CreatedAt:   time.Now().Unix(),
	}
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO course_content (id, course_id, title, content_type, description, file_path, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.CourseID, c.Title, c.ContentType, c.Description, c.FilePath, c.CreatedAt)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("insert content", err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DownloadContent streams a stored content file to anyone who can see the
// owning course.
func (h *Handler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	contentID := chi.URLParam(r, "contentID")

	var (
		courseID string
		filePath sql.NullString
	)
	err := h.db.QueryRowContext(r.Context(),
		`SELECT course_id, file_path FROM course_content WHERE id=$1`, contentID).
		Scan(&courseID, &filePath)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !filePath.Valid) {
		h.writeError(w, r, apperr.NotFound("content not found"))
		return
	}
	if err != nil {
		h.writeError(w, r, apperr.Persistence("fetch content", err))
		return
	}

	if id.Role == "teacher" {
		_, err = h.ownedCourse(r.Context(), courseID, id.ProfileID)
	} else {
		_, err = h.enrolledCourse(r.Context(), courseID, id.ProfileID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rc, err := h.blobs.Get(filePath.String)
	if err != nil {
		h.writeError(w, r, apperr.NotFound("file not found"))
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}

func (h *Handler) listContent(ctx context.Context, courseID string) ([]CourseContent, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, course_id, title, content_type, description, file_path, created_at
		  FROM course_content WHERE course_id=$1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, apperr.Persistence("list content", err)
	}
	defer rows.Close()

	out := []CourseContent{}
	for rows.Next() {
		var c CourseContent
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Title, &c.ContentType, &c.Description, &c.FilePath, &c.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan content", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
