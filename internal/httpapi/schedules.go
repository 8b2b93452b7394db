package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edushelf/campusd/internal/apperr"
	"github.com/edushelf/campusd/internal/auth"
)

type Schedule struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code,omitempty"`
	Day        string `json:"day"`
	TimeSlot   string `json:"time_slot"`
	Room       string `json:"room"`
	Duration   int    `json:"duration"`
}

// TimeSlots is the fixed grid the scheduling screen offers.
var TimeSlots = []string{
	"8:00-9:00", "9:00-10:00", "10:00-11:00", "11:00-12:00",
	"12:00-13:00", "13:00-14:00", "14:00-15:00", "15:00-16:00",
	"16:00-17:00", "17:00-18:00",
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT s.id, s.course_id, c.course_code, s.day, s.time_slot, s.room, s.duration
		  FROM schedules s
		  JOIN courses c ON s.course_id = c.id
		 WHERE c.instructor_id=$1
		 ORDER BY s.day, s.time_slot`, id.ProfileID)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("list schedules", err))
		return
	}
	defer rows.Close()

	out := []Schedule{}
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.CourseID, &s.CourseCode, &s.Day, &s.TimeSlot, &s.Room, &s.Duration); err != nil {
			h.writeError(w, r, apperr.Persistence("scan schedule", err))
			return
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedules":  out,
		"time_slots": TimeSlots,
	})
}

type scheduleReq struct {
	CourseID string `json:"course_id"`
	Day      string `json:"day"`
	TimeSlot string `json:"time_slot"`
	Room     string `json:"room"`
	Duration int    `json:"duration"`
}

func (req *scheduleReq) validate() error {
	if req.CourseID == "" {
		return apperr.Validation("course_id", "required")
	}
	if strings.TrimSpace(req.Day) == "" {
		return apperr.Validation("day", "required")
	}
	if strings.TrimSpace(req.TimeSlot) == "" {
		return apperr.Validation("time_slot", "required")
	}
	if strings.TrimSpace(req.Room) == "" {
		return apperr.Validation("room", "required")
	}
	if req.Duration <= 0 {
		req.Duration = 1
	}
	return nil
}

// AddSchedule books a room slot for one of the teacher's courses. No two
// schedules may share (day, time_slot, room); the unique constraint backs up
// the pre-write check.
func (h *Handler) AddSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req scheduleReq
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.ownedCourse(r.Context(), req.CourseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	taken, err := h.slotTaken(r.Context(), req.Day, req.TimeSlot, req.Room, "")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if taken {
		h.writeError(w, r, apperr.Conflict("this room is already booked at this time"))
		return
	}

	s := Schedule{
		ID:       uuid.New().String(),
		CourseID: req.CourseID,
		Day:      req.Day,
		TimeSlot: req.TimeSlot,
		Room:     req.Room,
		Duration: req.Duration,
	}
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO schedules (id, course_id, day, time_slot, room, duration)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.CourseID, s.Day, s.TimeSlot, s.Room, s.Duration)
	if err != nil {
		h.writeError(w, r, apperr.FromUnique(err, "this room is already booked at this time", "insert schedule"))
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSchedule moves a booking. Conflicts with other schedules fail;
// keeping a schedule's own slot unchanged succeeds.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	scheduleID := chi.URLParam(r, "scheduleID")

	if err := h.ownedSchedule(r.Context(), scheduleID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req scheduleReq
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.ownedCourse(r.Context(), req.CourseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	taken, err := h.slotTaken(r.Context(), req.Day, req.TimeSlot, req.Room, scheduleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if taken {
		h.writeError(w, r, apperr.Conflict("this room is already booked at this time"))
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE schedules SET course_id=$1, day=$2, time_slot=$3, room=$4, duration=$5 WHERE id=$6`,
		req.CourseID, req.Day, req.TimeSlot, req.Room, req.Duration, scheduleID)
	if err != nil {
		h.writeError(w, r, apperr.FromUnique(err, "this room is already booked at this time", "update schedule"))
		return
	}
	writeJSON(w, http.StatusOK, Schedule{
		ID:       scheduleID,
		CourseID: req.CourseID,
		Day:      req.Day,
		TimeSlot: req.TimeSlot,
		Room:     req.Room,
		Duration: req.Duration,
	})
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	scheduleID := chi.URLParam(r, "scheduleID")

	if err := h.ownedSchedule(r.Context(), scheduleID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM schedules WHERE id=$1`, scheduleID); err != nil {
		h.writeError(w, r, apperr.Persistence("delete schedule", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// slotTaken reports whether another schedule already holds the slot.
// excludeID skips the schedule being updated so a no-op move succeeds.
func (h *Handler) slotTaken(ctx context.Context, day, timeSlot, room, excludeID string) (bool, error) {
	var taken bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM schedules WHERE day=$1 AND time_slot=$2 AND room=$3 AND id != $4)`,
		day, timeSlot, room, excludeID).Scan(&taken)
	if err != nil {
		return false, apperr.Persistence("check schedule conflict", err)
	}
	return taken, nil
}

func (h *Handler) ownedSchedule(ctx context.Context, scheduleID, teacherID string) error {
	var ok int
	err := h.db.QueryRowContext(ctx, `
		SELECT 1
		  FROM schedules s
		  JOIN courses c ON s.course_id = c.id
		 WHERE s.id=$1 AND c.instructor_id=$2`, scheduleID, teacherID).Scan(&ok)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("schedule not found or access denied")
	}
	if err != nil {
		return apperr.Persistence("fetch schedule", err)
	}
	return nil
}
