package handlers

import (
	"net/http"

	"assessment-service/internal/middleware"
	"assessment-service/internal/models"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var quiz models.Quiz
	if err := c.ShouldBindJSON(&quiz); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)

	if err := h.Service.CreateQuiz(c.Request.Context(), &quiz, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	quiz, err := h.Service.GetQuiz(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	quizzes, err := h.Service.ListQuizzes(c.Request.Context(), actor, c.Query("course_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)

	if err := h.Service.UpdateQuiz(c.Request.Context(), c.Param("id"), update, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if err := h.Service.DeleteQuiz(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetQuestionBank serves the quiz's questions. Answer keys only reach
// teachers owning the quiz and admins; everyone else gets the redacted view.
func (h *QuizHandler) GetQuestionBank(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	questions, privileged, err := h.Service.QuestionBank(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if privileged {
		c.JSON(http.StatusOK, gin.H{"questions": questions})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": models.RedactQuestions(questions)})
}
