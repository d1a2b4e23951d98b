package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tutorhub/database"
	"tutorhub/services"
)

// StudentController handles student management requests
type StudentController struct {
	studentService    *services.StudentService
	enrollmentService *services.EnrollmentService
}

// NewStudentController creates a new StudentController instance
func NewStudentController(db *database.Database, enrollmentService *services.EnrollmentService) *StudentController {
	return &StudentController{
		studentService:    services.NewStudentService(db.DB),
		enrollmentService: enrollmentService,
	}
}

// parseIDParam reads the {id} path variable
func parseIDParam(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// CreateStudent handles a student registration request
func (c *StudentController) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateStudentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := c.studentService.Create(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// GetStudents returns all students
func (c *StudentController) GetStudents(w http.ResponseWriter, r *http.Request) {
	students, err := c.studentService.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// GetStudent returns a student by ID
func (c *StudentController) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	student, err := c.studentService.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// UpdateStudent handles a student update request
func (c *StudentController) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	var dto services.UpdateStudentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := c.studentService.Update(id, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// DeleteStudent handles a student removal request
func (c *StudentController) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	if err := c.studentService.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStudentEnrollments returns all enrollments of a student
func (c *StudentController) GetStudentEnrollments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	enrollments, err := c.enrollmentService.GetByStudent(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, enrollments)
}
