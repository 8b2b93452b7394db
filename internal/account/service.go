package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/edushelf/campusd/internal/apperr"
)

var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type Service struct {
	db         *sql.DB
	bcryptCost int
	logger     zerolog.Logger
}

func NewService(db *sql.DB, bcryptCost int, logger zerolog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	return &Service{db: db, bcryptCost: bcryptCost, logger: logger}
}

// Register validates the form, creates the user plus its role profile in one
// transaction, and returns the new user. The role is fixed at registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, apperr.Validation("username", "required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation("password", "passwords do not match")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password", "must be at least 6 characters long")
	}
	if !emailRe.MatchString(in.Email) {
		return nil, apperr.Validation("email", "invalid email address")
	}
	if in.Role != string(RoleStudent) && in.Role != string(RoleTeacher) {
		return nil, apperr.Validation("role", "must be student or teacher")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username=$1 OR email=$2)`,
		in.Username, in.Email).Scan(&exists)
	if err != nil {
		return nil, apperr.Persistence("check existing user", err)
	}
	if exists {
		return nil, apperr.Conflict("username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.New().String()
	profileID := uuid.New().String()
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence("begin register", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		userID, in.Username, in.Email, string(hash), in.Role, now)
	if err != nil {
		return nil, apperr.FromUnique(err, "username or email already exists", "create user")
	}

	if in.Role == string(RoleStudent) {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO students (id, user_id, student_no, first_name, last_name, email, enrollment_date, major)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,'Undeclared')`,
			profileID, userID, "S"+shortID(userID), in.FirstName, in.LastName, in.Email, now)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO teachers (id, user_id, teacher_no, first_name, last_name, email, hire_date, department)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,'General')`,
			profileID, userID, "T"+shortID(userID), in.FirstName, in.LastName, in.Email, now)
	}
	if err != nil {
		return nil, apperr.Persistence("create profile", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, apperr.Persistence("commit register", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("role", in.Role).
		Msg("user registered")

	return &User{
		ID:        userID,
		Username:  in.Username,
		Email:     in.Email,
		Role:      in.Role,
		ProfileID: profileID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}, nil
}

// Authenticate resolves a username/password pair to the user and its role
// profile. Invalid username and wrong password are reported identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var (
		u    User
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.role,
		       COALESCE(s.id, t.id), COALESCE(s.first_name, t.first_name), COALESCE(s.last_name, t.last_name)
		  FROM users u
		  LEFT JOIN students s ON u.id = s.user_id
		  LEFT JOIN teachers t ON u.id = t.user_id
		 WHERE u.username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &hash, &u.Role, &u.ProfileID, &u.FirstName, &u.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("invalid username or password")
	}
	if err != nil {
		return nil, apperr.Persistence("fetch user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, apperr.NotFound("invalid username or password")
	}
	return &u, nil
}

// ListStudents returns every student with the course codes they are enrolled
// in, for the teacher's enrollment screen.
func (s *Service) ListStudents(ctx context.Context) ([]StudentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_no, first_name, last_name, email, major
		  FROM students ORDER BY last_name, first_name`)
	if err != nil {
		return nil, apperr.Persistence("list students", err)
	}
	defer rows.Close()

	out := []StudentSummary{}
	for rows.Next() {
		var st StudentSummary
		if err := rows.Scan(&st.ID, &st.StudentNo, &st.FirstName, &st.LastName, &st.Email, &st.Major); err != nil {
			return nil, apperr.Persistence("scan student", err)
		}
		st.Courses = []string{}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list students", err)
	}

	for i := range out {
		crows, err := s.db.QueryContext(ctx, `
			SELECT c.course_code
			  FROM enrollments e
			  JOIN courses c ON e.course_id = c.id
			 WHERE e.student_id = $1
			 ORDER BY c.course_code`, out[i].ID)
		if err != nil {
			return nil, apperr.Persistence("list student courses", err)
		}
		for crows.Next() {
			var code string
			if err := crows.Scan(&code); err != nil {
				crows.Close()
				return nil, apperr.Persistence("scan course code", err)
			}
			out[i].Courses = append(out[i].Courses, code)
		}
		crows.Close()
	}
	return out, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
