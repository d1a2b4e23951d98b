package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"tutorhub/config"
	"tutorhub/controllers"
	"tutorhub/database"
	"tutorhub/middleware"
	"tutorhub/services"
	"tutorhub/utils"
)

func initPaymentScheduler(db *database.Database, billingService *services.BillingService, emailService *services.EmailService) {
	scheduler := services.NewPaymentSchedulerService(db.DB, billingService, emailService)
	scheduler.Start()
	log.Println("Payment scheduler started")
}

// healthHandler reports service liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// startOpsServer runs the operations endpoints on a separate port
func startOpsServer(cfg *config.Config) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
	})

	addr := fmt.Sprintf(":%d", cfg.Server.OpsPort)
	log.Printf("Ops server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start ops server: %v", err)
	}
}

func main() {
	// Load the configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to the database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize the services
	emailService := services.NewEmailService(cfg)
	billingService := services.NewBillingService()
	enrollmentService := services.NewEnrollmentService(db.DB, billingService, emailService)
	paymentService := services.NewPaymentService(db.DB, emailService, cfg.Billing.ReceiptHMACKey)

	// Start the payment scheduler
	initPaymentScheduler(db, billingService, emailService)

	// Start the ops server
	go startOpsServer(cfg)

	// Create the router
	router := mux.NewRouter()

	// Initialize the controllers
	authController := controllers.NewAuthController(db)
	studentController := controllers.NewStudentController(db, enrollmentService)
	courseController := controllers.NewCourseController(db, enrollmentService)
	enrollmentController := controllers.NewEnrollmentController(enrollmentService)
	paymentController := controllers.NewPaymentController(paymentService)

	// Public routes
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	// Student routes
	protected.HandleFunc("/students", studentController.CreateStudent).Methods("POST")
	protected.HandleFunc("/students", studentController.GetStudents).Methods("GET")
	protected.HandleFunc("/students/{id}", studentController.GetStudent).Methods("GET")
	protected.HandleFunc("/students/{id}", studentController.UpdateStudent).Methods("PUT")
	protected.HandleFunc("/students/{id}", studentController.DeleteStudent).Methods("DELETE")
	protected.HandleFunc("/students/{id}/enrollments", studentController.GetStudentEnrollments).Methods("GET")
	protected.HandleFunc("/students/{id}/payments", paymentController.GetStudentPayments).Methods("GET")
	protected.HandleFunc("/students/{id}/statement", paymentController.SendStatement).Methods("POST")

	// Course routes
	protected.HandleFunc("/courses", courseController.CreateCourse).Methods("POST")
	protected.HandleFunc("/courses", courseController.GetCourses).Methods("GET")
	protected.HandleFunc("/courses/{id}", courseController.GetCourse).Methods("GET")
	protected.HandleFunc("/courses/{id}", courseController.UpdateCourse).Methods("PUT")
	protected.HandleFunc("/courses/{id}", courseController.DeleteCourse).Methods("DELETE")
	protected.HandleFunc("/courses/{id}/enrollments", courseController.GetCourseEnrollments).Methods("GET")
	protected.HandleFunc("/courses/{id}/payments", paymentController.GetCoursePayments).Methods("GET")

	// Enrollment routes
	protected.HandleFunc("/enrollments", enrollmentController.EnrollStudent).Methods("POST")
	protected.HandleFunc("/enrollments/{id}/transfer", enrollmentController.TransferStudent).Methods("POST")

	// Payment routes
	protected.HandleFunc("/payments/{id}/pay", paymentController.MarkPaid).Methods("POST")
	protected.HandleFunc("/payments/{id}/waive", paymentController.WaivePayment).Methods("POST")

	// Start the server
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on port %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
