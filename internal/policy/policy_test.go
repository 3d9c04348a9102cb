package policy

import (
	"testing"

	"assessment-service/internal/models"
)

func TestCanViewQuiz(t *testing.T) {
	owner := Actor{ID: "t1", Role: RoleTeacher}
	otherTeacher := Actor{ID: "t2", Role: RoleTeacher}
	student := Actor{ID: "s1", Role: RoleStudent}
	admin := Actor{ID: "a1", Role: RoleAdmin}

	cases := []struct {
		name  string
		quiz  models.Quiz
		actor Actor
		want  bool
	}{
		{"student sees published", models.Quiz{Published: true}, student, true},
		{"student blocked from draft", models.Quiz{Published: false}, student, false},
		{"student blocked from deleted", models.Quiz{Published: true, Deleted: true}, student, false},
		{"owner sees own draft", models.Quiz{TeacherID: "t1"}, owner, true},
		{"other teacher blocked from draft", models.Quiz{TeacherID: "t1"}, otherTeacher, false},
		{"admin sees deleted", models.Quiz{Deleted: true}, admin, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanViewQuiz(&tc.quiz, tc.actor); got != tc.want {
				t.Errorf("CanViewQuiz = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanManageQuiz(t *testing.T) {
	quiz := &models.Quiz{TeacherID: "t1"}

	if !CanManageQuiz(quiz, Actor{ID: "t1", Role: RoleTeacher}) {
		t.Error("Expected owning teacher to manage quiz")
	}
	if CanManageQuiz(quiz, Actor{ID: "t2", Role: RoleTeacher}) {
		t.Error("Expected non-owning teacher to be blocked")
	}
	if CanManageQuiz(quiz, Actor{ID: "s1", Role: RoleStudent}) {
		t.Error("Expected student to be blocked")
	}
	if !CanManageQuiz(quiz, Actor{ID: "a1", Role: RoleAdmin}) {
		t.Error("Expected admin to manage any quiz")
	}
}

func TestCanSubmit(t *testing.T) {
	sub := &models.Submission{StudentID: "s1"}

	if !CanSubmit(sub, Actor{ID: "s1", Role: RoleStudent}) {
		t.Error("Expected owning student to submit")
	}
	if CanSubmit(sub, Actor{ID: "s2", Role: RoleStudent}) {
		t.Error("Expected another student to be blocked")
	}
}

func TestCanViewSubmission(t *testing.T) {
	quiz := &models.Quiz{TeacherID: "t1"}
	sub := &models.Submission{StudentID: "s1"}

	if !CanViewSubmission(sub, quiz, Actor{ID: "s1", Role: RoleStudent}) {
		t.Error("Expected owning student to view submission")
	}
	if CanViewSubmission(sub, quiz, Actor{ID: "s2", Role: RoleStudent}) {
		t.Error("Expected another student to be blocked")
	}
	if !CanViewSubmission(sub, quiz, Actor{ID: "t1", Role: RoleTeacher}) {
		t.Error("Expected quiz teacher to view submission")
	}
	if CanViewSubmission(sub, quiz, Actor{ID: "t2", Role: RoleTeacher}) {
		t.Error("Expected unrelated teacher to be blocked")
	}
	if !CanViewSubmission(sub, quiz, Actor{ID: "a1", Role: RoleAdmin}) {
		t.Error("Expected admin to view submission")
	}
}
