package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/models"
	"carrental-backend/utils"
)

type AdminStore interface {
	Authenticate(ctx context.Context, username, password string) (models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, fullName, username, password string) (models.Admin, error)
}

type AdminController struct {
	Admins AdminStore
}

func NewAdminController(admins AdminStore) *AdminController {
	return &AdminController{Admins: admins}
}

type createAdminPayload struct {
	FullName string `json:"full_name" binding:"max=255"`
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctrl *AdminController) GetAdmins(c *gin.Context) {
	admins, err := ctrl.Admins.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, admins)
}

func (ctrl *AdminController) CreateAdmin(c *gin.Context) {
	var payload createAdminPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	admin, err := ctrl.Admins.Create(c.Request.Context(), payload.FullName, payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, admin)
}

// Login checks credentials so a client can validate them before it starts
// sending them with every write request.
func (ctrl *AdminController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	admin, err := ctrl.Admins.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"admin": admin})
}

// Me returns the admin authenticated by AdminAuth.
func (ctrl *AdminController) Me(c *gin.Context) {
	admin, ok := c.Get("admin")
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin credentials required")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, admin)
}
