package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"carrental-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// SeedDatabase creates the first admin and a small demo fleet on an empty
// database. Existing rows are never touched.
func SeedDatabase(admin AdminConfig) {
	// ---------------- Admins ----------------
	var adminCount int64
	DB.Model(&models.Admin{}).Count(&adminCount)
	if adminCount == 0 {
		username := strings.TrimSpace(admin.Username)
		if username == "" {
			username = "admin@carrental.local"
		}
		hash := strings.TrimSpace(admin.PasswordHash)
		if hash == "" {
			b, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("warning: failed to hash default admin password: %v", err)
				return
			}
			hash = string(b)
			log.Println("⚠️  ADMIN_PASSWORD_HASH not set, seeding admin with the default password")
		}
		a := models.Admin{FullName: "Fleet Admin", Username: username, Password: hash}
		if err := DB.Create(&a).Error; err != nil {
			log.Printf("warning: failed to create default admin: %v", err)
		} else {
			log.Println("Default admin seeded")
		}
	}

	// ---------------- Vehicles ----------------
	var vehicleCount int64
	DB.Model(&models.Vehicle{}).Count(&vehicleCount)
	if vehicleCount == 0 {
		vehicles := []models.Vehicle{
			{DisplayName: "Logan #1", PlateNumber: "12345-A-1", ModelName: "Dacia Logan", Category: "sedan", Active: true},
			{DisplayName: "Logan #2", PlateNumber: "12346-A-1", ModelName: "Dacia Logan", Category: "sedan", Active: true},
			{DisplayName: "Clio #1", PlateNumber: "23456-B-6", ModelName: "Renault Clio", Category: "compact", Active: true},
			{DisplayName: "Duster #1", PlateNumber: "34567-D-6", ModelName: "Dacia Duster", Category: "suv", Active: true},
		}
		if err := DB.Create(&vehicles).Error; err != nil {
			log.Printf("warning: failed to seed vehicles: %v", err)
		} else {
			log.Println("Vehicles seeded")
		}
	}
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// resolveMySQLDSN prefers MYSQL_URL / DATABASE_URL and falls back to the
// individual DB_* variables.
func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "carrental_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, nil
}

func ConnectDatabase(admin AdminConfig) error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}
	DB = db

	if err := DB.AutoMigrate(
		&models.Admin{},
		&models.Vehicle{},
		&models.Booking{},
		&models.CalendarNote{},
	); err != nil {
		return err
	}

	SeedDatabase(admin)
	return nil
}
