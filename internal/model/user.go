package model

// Student represents a roster entry. Section drives exam eligibility.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

// Teacher represents a staff account.
type Teacher struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// StudentLoginRequest is the payload for a student login.
type StudentLoginRequest struct {
	StudentID string `json:"student_id" binding:"required,min=1,max=32"`
}

// TeacherLoginRequest is the payload for a teacher login.
type TeacherLoginRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}
