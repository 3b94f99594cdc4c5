package controllers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dukani-store/dukani-api/initializers"
	"github.com/dukani-store/dukani-api/models"
	"github.com/dukani-store/dukani-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 10

	msgInvalidInput        = "invalid input"
	msgUserAlreadyExists   = "user with this email or username already exists"
	msgInvalidCredentials  = "invalid email/username or password"
	msgAccountNotActivated = "Account not activated. Check your email for the activation link."
	msgInternalServerError = "Internal server error"
	msgInvalidTokenLink    = "Invalid or expired link"
	msgUserCreated         = "Account created. Check your email to activate it."
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// sendValidationError surfaces per-field messages for binding failures and
// falls back to a generic message for malformed bodies.
func sendValidationError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := gin.H{}
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				fields[fe.Field()] = fe.Field() + " is required"
			case "email":
				fields[fe.Field()] = fe.Field() + " must be a valid email address"
			case "min":
				fields[fe.Field()] = fe.Field() + " must be at least " + fe.Param()
			case "oneof":
				fields[fe.Field()] = fe.Field() + " must be one of: " + fe.Param()
			default:
				fields[fe.Field()] = fe.Field() + " is invalid"
			}
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": fields})
		return
	}
	sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

func issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(30 * 24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func sendActivationEmail(user models.User, activationToken string) error {
	data := utils.EmailData{
		Name:      user.Username,
		Message:   "Thank you for signing up! Click the button below to activate your account.",
		ActionURL: os.Getenv("FRONTEND_URL") + "/auth/verify-email?token=" + url.QueryEscape(activationToken),
		LogoURL:   os.Getenv("FRONTEND_URL") + "/images/logo.png",
	}
	return utils.SendEmail(user.Email, "Activate your Dukani account", data, filepath.Join("templates", "verify_email.html"))
}

func sendPasswordResetEmail(user models.User, resetToken string) error {
	data := utils.EmailData{
		Name:      user.Username,
		Message:   "You requested a password reset. Click the button below to choose a new password.",
		ActionURL: os.Getenv("FRONTEND_URL") + "/auth/reset-password?token=" + url.QueryEscape(resetToken),
		LogoURL:   os.Getenv("FRONTEND_URL") + "/images/logo.png",
	}
	return utils.SendEmail(user.Email, "Dukani password reset", data, filepath.Join("templates", "reset_password.html"))
}

// Signup registers a new customer account and sends the activation link.
func Signup(ctx *gin.Context) {
	var signUpData struct {
		Fullname    string `json:"fullname" binding:"required"`
		Username    string `json:"username" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Phone       string `json:"phone"`
		Password    string `json:"password" binding:"required,min=8"`
		AcceptTerms bool   `json:"acceptTerms"`
	}
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendValidationError(ctx, err)
		return
	}

	var existing models.User
	result := initializers.DB.Where("email = ? OR username = ?", signUpData.Email, signUpData.Username).Find(&existing)
	if result.Error != nil {
		log.Println("Database error during signup:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected > 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	activationToken, err := utils.GenerateCode(16)
	if err != nil {
		log.Println("Token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	user := models.User{
		Fullname:               signUpData.Fullname,
		Username:               signUpData.Username,
		Email:                  signUpData.Email,
		Phone:                  signUpData.Phone,
		Password:               hashedPassword,
		Role:                   "user",
		AcceptTerms:            signUpData.AcceptTerms,
		AccountActivated:       false,
		AccountActivationToken: activationToken,
	}
	if result := initializers.DB.Create(&user); result.Error != nil {
		log.Println("User creation error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if err := sendActivationEmail(user, activationToken); err != nil {
		// Account exists either way; the user can request another link.
		log.Println("Error sending activation email:", err)
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated})
}

// Login authenticates by email or username and returns a signed JWT.
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendValidationError(ctx, err)
		return
	}

	var user models.User
	if err := initializers.DB.Where("email = ? OR username = ?", loginData.Identifier, loginData.Identifier).First(&user).Error; err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginData.Password)); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if !user.AccountActivated {
		sendErrorResponse(ctx, http.StatusBadRequest, msgAccountNotActivated)
		return
	}

	tokenString, err := issueToken(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString})
}

// ActivateAccount consumes the emailed activation token.
func ActivateAccount(ctx *gin.Context) {
	activationToken := ctx.Param("activationToken")

	result := initializers.DB.Model(&models.User{}).
		Where("account_activation_token = ? AND account_activation_token <> ''", activationToken).
		Updates(map[string]any{
			"account_activated":        true,
			"account_activation_token": "",
		})

	if result.Error != nil {
		log.Println("Account activation error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidTokenLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Account activated successfully."})
}

// SendPasswordResetLink emails a reset token to an existing account.
func SendPasswordResetLink(ctx *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendValidationError(ctx, err)
		return
	}

	var user models.User
	if err := initializers.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "user with this email does not exist")
		return
	}

	resetToken, err := utils.GenerateCode(16)
	if err != nil {
		log.Println("Reset token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if result := initializers.DB.Model(&user).Update("password_reset_token", resetToken); result.Error != nil {
		log.Println("Error saving reset token:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if err := sendPasswordResetEmail(user, resetToken); err != nil {
		log.Println("Error sending password reset email:", err)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Check your email for a password reset link."})
}

// ResetPassword sets a new password for the holder of a reset token.
func ResetPassword(ctx *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendValidationError(ctx, err)
		return
	}

	hashedPassword, err := hashPassword(body.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	resetToken := ctx.Param("resetToken")
	result := initializers.DB.Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_token <> ''", resetToken).
		Updates(map[string]any{
			"password":             hashedPassword,
			"password_reset_token": "",
		})

	if result.Error != nil {
		log.Println("Error resetting password:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidTokenLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Password reset successful"})
}
