package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tutorhub/services"
)

// PaymentController handles payment lifecycle requests
type PaymentController struct {
	paymentService *services.PaymentService
}

// NewPaymentController creates a new PaymentController instance
func NewPaymentController(paymentService *services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// parsePaymentID reads the {id} path variable as a UUID
func parsePaymentID(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["id"])
}

// MarkPaid settles a payment and returns the signed receipt
func (c *PaymentController) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parsePaymentID(r)
	if err != nil {
		http.Error(w, "Invalid payment ID", http.StatusBadRequest)
		return
	}

	var dto services.MarkPaidDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	payment, err := c.paymentService.MarkPaid(id, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// WaivePayment writes off a payment
func (c *PaymentController) WaivePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parsePaymentID(r)
	if err != nil {
		http.Error(w, "Invalid payment ID", http.StatusBadRequest)
		return
	}

	payment, err := c.paymentService.Waive(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// GetStudentPayments returns a student's payments.
// An optional ?status= query narrows the result.
func (c *PaymentController) GetStudentPayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	payments, err := c.paymentService.ListByStudent(id, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// GetCoursePayments returns a course's payments.
// An optional ?status= query narrows the result.
func (c *PaymentController) GetCoursePayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	payments, err := c.paymentService.ListByCourse(id, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// SendStatement emails a payment statement to the student
func (c *PaymentController) SendStatement(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	if err := c.paymentService.EmailStatement(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Statement sent"})
}
