package controllers

import (
	"encoding/json"
	"net/http"

	"tutorhub/services"
)

// EnrollmentController handles enrollment and transfer requests
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController instance
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

// EnrollStudent enrolls a student in a course and returns the new
// enrollment together with the generated payments
func (c *EnrollmentController) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	var dto services.EnrollStudentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := c.enrollmentService.Enroll(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// TransferStudent moves an active enrollment to another course
func (c *EnrollmentController) TransferStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid enrollment ID", http.StatusBadRequest)
		return
	}

	var dto services.TransferStudentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.EnrollmentID = id

	response, err := c.enrollmentService.Transfer(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
