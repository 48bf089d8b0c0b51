package utils

import (
	"log"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"carrental-backend/models"
)

var registerOnce sync.Once

// RegisterValidators adds the domain binding tags to gin's validator:
//
//	notetype       maintenance | blocked | general
//	bookingstatus  pending | confirmed | active | completed | cancelled
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("⚠️  gin validator is not go-playground/validator, custom tags not registered")
			return
		}
		if err := v.RegisterValidation("notetype", func(fl validator.FieldLevel) bool {
			return models.NoteType(fl.Field().String()).Valid()
		}); err != nil {
			log.Printf("⚠️  register notetype validator: %v", err)
		}
		if err := v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
			return models.BookingStatus(fl.Field().String()).Valid()
		}); err != nil {
			log.Printf("⚠️  register bookingstatus validator: %v", err)
		}
	})
}
