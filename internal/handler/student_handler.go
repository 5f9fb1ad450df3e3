package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/models"
	"github.com/edupulse/presence-api/internal/service"
	"github.com/edupulse/presence-api/pkg/response"
)

// StudentHandler exposes directory reads.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Get godoc
// @Summary Fetch one student
// @Tags Students
// @Produce json
// @Param index path string true "Student index"
// @Success 200 {object} response.Envelope
// @Router /students/{index} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("index"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Validate godoc
// @Summary Check whether a student is validly enrolled right now
// @Tags Students
// @Produce json
// @Param index path string true "Student index"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/validate [get]
func (h *StudentHandler) Validate(c *gin.Context) {
	enrolled, err := h.students.Validate(c.Request.Context(), c.Param("index"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student_index": c.Param("index"), "enrolled": enrolled}, nil)
}

// List godoc
// @Summary Page through the student directory
// @Tags Students
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	students, total, err := h.students.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// ByProfessor godoc
// @Summary Students across a professor's subjects
// @Tags Students
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/students [get]
func (h *StudentHandler) ByProfessor(c *gin.Context) {
	students, err := h.students.ByProfessor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
