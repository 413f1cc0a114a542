package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/party-rooms/internal/handlers/dto"
	"github.com/thereayou/party-rooms/internal/questions"
	"github.com/thereayou/party-rooms/internal/services"
)

type QuestionHandler struct {
	bank services.QuestionService
}

func NewQuestionHandler(bank services.QuestionService) *QuestionHandler {
	return &QuestionHandler{bank: bank}
}

// List GET /api/questions
func (h *QuestionHandler) List(c *gin.Context) {
	all := h.bank.All()
	c.JSON(http.StatusOK, dto.QuestionsResponse{
		Truth: all[questions.Truth],
		Dare:  all[questions.Dare],
	})
}

// Add POST /api/questions/:kind
func (h *QuestionHandler) Add(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}

	var req dto.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, false, "Invalid question")
		return
	}

	if err := h.bank.Add(c.Request.Context(), kind, req.Question); err != nil {
		if errors.Is(err, questions.ErrEmptyQuestion) {
			respond(c, http.StatusBadRequest, false, "Invalid question")
			return
		}
		slog.Error("add question failed", "kind", kind, "error", err)
		respond(c, http.StatusInternalServerError, false, "Failed to save question")
		return
	}

	respond(c, http.StatusOK, true, title(kind)+" question added")
}

// Delete DELETE /api/questions/:kind/:index
func (h *QuestionHandler) Delete(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond(c, http.StatusBadRequest, false, "Invalid index")
		return
	}

	if err := h.bank.Delete(c.Request.Context(), kind, index); err != nil {
		if errors.Is(err, questions.ErrInvalidIndex) {
			respond(c, http.StatusBadRequest, false, "Invalid index")
			return
		}
		slog.Error("delete question failed", "kind", kind, "index", index, "error", err)
		respond(c, http.StatusInternalServerError, false, "Failed to delete question")
		return
	}

	respond(c, http.StatusOK, true, title(kind)+" question deleted")
}

func parseKindParam(c *gin.Context) (questions.Kind, bool) {
	kind, err := questions.ParseKind(c.Param("kind"))
	if err != nil {
		respond(c, http.StatusNotFound, false, "Unknown question type")
		return "", false
	}
	return kind, true
}

func respond(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, dto.QuestionResponse{Success: success, Message: message})
}

func title(kind questions.Kind) string {
	s := kind.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
