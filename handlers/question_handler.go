package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"questionbank/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

type ListQuestionsQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=10" binding:"min=0"`
}

// CreateQuestion godoc
// @Summary      Create a question with its choices
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        request body services.QuestionRequest true "Question data"
// @Success      200 {object} services.QuestionResponse
// @Failure      400 {object} ErrorResponse
// @Router       /questions/ [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// GetQuestion godoc
// @Summary      Get a question
// @Tags         questions
// @Produce      json
// @Param        id path int true "Question ID"
// @Success      200 {object} services.QuestionResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions godoc
// @Summary      List questions
// @Tags         questions
// @Produce      json
// @Param        skip  query int false "Questions to skip" default(0)
// @Param        limit query int false "Maximum questions to return" default(10)
// @Success      200 {array} services.QuestionResponse
// @Failure      400 {object} ErrorResponse
// @Router       /questions/ [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var query ListQuestionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	questions, err := h.questionService.ListQuestions(c.Request.Context(), query.Skip, query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// UpdateQuestion godoc
// @Summary      Replace a question's text and choices
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        id path int true "Question ID"
// @Param        request body services.QuestionRequest true "Question data"
// @Success      200 {object} services.QuestionResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary      Delete a question and its choices
// @Tags         questions
// @Param        id path int true "Question ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseQuestionID rejects non-integer ids with 400. Integers that can never
// be a stored id are answered with 404 without querying the store.
func parseQuestionID(c *gin.Context) (uint, bool) {
	questionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			respondError(c, services.ErrQuestionNotFound)
			return 0, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid question ID"})
		return 0, false
	}
	if questionID <= 0 || uint64(questionID) > uint64(^uint(0)) {
		respondError(c, services.ErrQuestionNotFound)
		return 0, false
	}
	return uint(questionID), true
}
