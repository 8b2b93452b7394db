package account

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// User is the credential-owning identity row.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ProfileID string `json:"profile_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type StudentSummary struct {
	ID        string   `json:"id"`
	StudentNo string   `json:"student_no"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Major     string   `json:"major"`
	Courses   []string `json:"courses"` // course codes the student is enrolled in
}
