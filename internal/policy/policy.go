// Package policy holds the stateless role and ownership predicates gating
// quiz and attempt operations.
package policy

import "assessment-service/internal/models"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Actor is the authenticated caller as resolved by the request boundary.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// CanViewQuiz: students see only published, non-deleted quizzes; teachers
// additionally their own unpublished ones; admins see everything.
func CanViewQuiz(quiz *models.Quiz, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if quiz.Deleted {
		return false
	}
	if quiz.Published {
		return true
	}
	return actor.IsTeacher() && quiz.TeacherID == actor.ID
}

// CanManageQuiz: only the owning teacher or an admin.
func CanManageQuiz(quiz *models.Quiz, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsTeacher() && quiz.TeacherID == actor.ID
}

// CanSubmit: only the submission's own student.
func CanSubmit(sub *models.Submission, actor Actor) bool {
	return sub.StudentID == actor.ID
}

// CanResume: only the owning teacher or an admin. Whether the quiz permits
// resume at all (allow_teacher_resume) is a state question, not an access one,
// and is checked by the controller.
func CanResume(quiz *models.Quiz, actor Actor) bool {
	return CanManageQuiz(quiz, actor)
}

// CanViewSubmission: the owning student, the quiz's teacher, or an admin.
func CanViewSubmission(sub *models.Submission, quiz *models.Quiz, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if sub.StudentID == actor.ID {
		return true
	}
	return actor.IsTeacher() && quiz.TeacherID == actor.ID
}
