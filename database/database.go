package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorhub/config"
	"tutorhub/models"
)

// Database represents the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a connection, configures pooling and runs migrations
func NewDatabase(cfg *config.Config) (*Database, error) {
	// Build the DSN
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	// Configure the GORM logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Open the connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Configure the connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Run SQL migrations
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run SQL migrations: %v", err)
	}

	// Run model auto-migration
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %v", err)
	}

	return &Database{DB: db}, nil
}

// GetDB returns the GORM instance
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// runMigrations applies the SQL migrations
func runMigrations(cfg *config.Config) error {
	// Build the migration URL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	// Create the migration instance
	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration: %v", err)
	}

	// Apply the migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %v", err)
	}

	return nil
}

// autoMigrate runs the model auto-migration
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.Payment{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate: %v", err)
	}

	return nil
}

// User helpers
func (d *Database) CreateUser(user *models.User) error {
	return d.DB.Create(user).Error
}

func (d *Database) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := d.DB.First(&user, id).Error
	return &user, err
}

func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := d.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

// Student helpers
func (d *Database) CreateStudent(student *models.Student) error {
	return d.DB.Create(student).Error
}

func (d *Database) GetStudentByID(id uint) (*models.Student, error) {
	var student models.Student
	err := d.DB.First(&student, id).Error
	return &student, err
}

// Course helpers
func (d *Database) CreateCourse(course *models.Course) error {
	return d.DB.Create(course).Error
}

func (d *Database) GetCourseByID(id uint) (*models.Course, error) {
	var course models.Course
	err := d.DB.First(&course, id).Error
	return &course, err
}

// Enrollment helpers
func (d *Database) CreateEnrollment(enrollment *models.Enrollment) error {
	return d.DB.Create(enrollment).Error
}

func (d *Database) GetEnrollmentByID(id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := d.DB.First(&enrollment, id).Error
	return &enrollment, err
}

// Payment helpers
func (d *Database) CreatePayment(payment *models.Payment) error {
	return d.DB.Create(payment).Error
}

func (d *Database) GetPaymentByID(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := d.DB.First(&payment, "id = ?", id).Error
	return &payment, err
}
