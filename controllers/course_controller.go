package controllers

import (
	"encoding/json"
	"net/http"

	"tutorhub/database"
	"tutorhub/services"
)

// CourseController handles course management requests
type CourseController struct {
	courseService     *services.CourseService
	enrollmentService *services.EnrollmentService
}

// NewCourseController creates a new CourseController instance
func NewCourseController(db *database.Database, enrollmentService *services.EnrollmentService) *CourseController {
	return &CourseController{
		courseService:     services.NewCourseService(db.DB),
		enrollmentService: enrollmentService,
	}
}

// CreateCourse handles a course creation request
func (c *CourseController) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateCourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	course, err := c.courseService.Create(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

// GetCourses returns all courses
func (c *CourseController) GetCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := c.courseService.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// GetCourse returns a course by ID
func (c *CourseController) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	course, err := c.courseService.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// UpdateCourse handles a course update request
func (c *CourseController) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var dto services.UpdateCourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	course, err := c.courseService.Update(id, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// DeleteCourse handles a course removal request
func (c *CourseController) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := c.courseService.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCourseEnrollments returns all enrollments of a course
func (c *CourseController) GetCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	enrollments, err := c.enrollmentService.GetByCourse(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, enrollments)
}
