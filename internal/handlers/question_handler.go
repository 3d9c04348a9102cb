package handlers

import (
	"net/http"

	"assessment-service/internal/middleware"
	"assessment-service/internal/models"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	Service *service.QuestionService
}

func NewQuestionHandler(s *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{Service: s}
}

func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	question.QuizID = c.Param("id")
	actor := middleware.ActorFrom(c)

	if err := h.Service.AddQuestion(c.Request.Context(), &question, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"question": question})
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)

	if err := h.Service.UpdateQuestion(c.Request.Context(), c.Param("questionId"), update, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if err := h.Service.DeleteQuestion(c.Request.Context(), c.Param("questionId"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
