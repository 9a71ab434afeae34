package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"threads-server/middlewares"
	"threads-server/models"
	apperrors "threads-server/pkg/errors"
	"threads-server/repository"
	"threads-server/services"
	"threads-server/utils"
)

const suggestedUserCount = 4

type UserController struct {
	users  repository.UserStore
	posts  repository.PostStore
	media  services.MediaUploader
	secret string
}

func NewUserController(users repository.UserStore, posts repository.PostStore, media services.MediaUploader, secret string) *UserController {
	return &UserController{users: users, posts: posts, media: media, secret: secret}
}

// profileResponse is the account shape returned to clients; it never
// carries the password hash.
type profileResponse struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Biography      string `json:"biography"`
	ProfilePicture string `json:"profilePicture"`
}

func toProfile(user *models.User) profileResponse {
	return profileResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Username:       user.Username,
		Biography:      user.Biography,
		ProfilePicture: user.ProfilePicture,
	}
}

func (uc *UserController) setSessionCookie(c *gin.Context, userID string) error {
	token, err := services.GenerateToken(userID, uc.secret)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.CookieName, token, int(services.TokenTTL.Seconds()), "/", "", false, true)
	return nil
}

func (uc *UserController) SignUp(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := uc.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if existing != nil {
		utils.RespondError(c, apperrors.ErrUserExists)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Username: input.Username,
		Password: string(hashed),
	}
	if err := uc.users.Create(c.Request.Context(), user); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := uc.setSessionCookie(c, user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Signed up successfully", toProfile(user))
}

func (uc *UserController) SignIn(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := uc.users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if user == nil {
		utils.RespondError(c, apperrors.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, apperrors.ErrInvalidCredentials)
		return
	}

	if err := uc.setSessionCookie(c, user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Signed in successfully", toProfile(user))
}

func (uc *UserController) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.CookieName, "", -1, "/", "", false, true)
	utils.RespondSuccess(c, http.StatusOK, "Signed out successfully", nil)
}

// GetProfile resolves the :query path segment as a user id first, then as
// a username.
func (uc *UserController) GetProfile(c *gin.Context) {
	query := c.Param("query")

	user, err := uc.users.FindByID(c.Request.Context(), query)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if user == nil {
		user, err = uc.users.FindByUsername(c.Request.Context(), query)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
	}
	if user == nil {
		utils.RespondError(c, apperrors.ErrUserNotFound)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "User found successfully", toProfile(user))
}

func (uc *UserController) GetSuggestedUsers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	suggested, err := uc.users.Suggested(c.Request.Context(), user.ID, suggestedUserCount)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	profiles := make([]profileResponse, 0, len(suggested))
	for i := range suggested {
		profiles = append(profiles, toProfile(&suggested[i]))
	}

	utils.RespondSuccess(c, http.StatusOK, "Suggested users found successfully", profiles)
}

func (uc *UserController) FollowUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	if user.ID == targetID {
		utils.RespondError(c, apperrors.ErrSelfFollow)
		return
	}

	target, err := uc.users.FindByID(c.Request.Context(), targetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if target == nil {
		utils.RespondError(c, apperrors.ErrUserNotFound)
		return
	}

	following, err := uc.users.IsFollowing(c.Request.Context(), user.ID, targetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if following {
		utils.RespondError(c, apperrors.ErrAlreadyFollowing)
		return
	}

	if err := uc.users.Follow(c.Request.Context(), user.ID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Followed successfully", nil)
}

func (uc *UserController) UnfollowUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	if user.ID == targetID {
		utils.RespondError(c, apperrors.ErrSelfUnfollow)
		return
	}

	target, err := uc.users.FindByID(c.Request.Context(), targetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if target == nil {
		utils.RespondError(c, apperrors.ErrUserNotFound)
		return
	}

	following, err := uc.users.IsFollowing(c.Request.Context(), user.ID, targetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !following {
		utils.RespondError(c, apperrors.ErrNotFollowing)
		return
	}

	if err := uc.users.Unfollow(c.Request.Context(), user.ID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Unfollowed successfully", nil)
}

// UpdateProfile partially updates the caller's own account. A new profile
// picture replaces the hosted one; replies keep their denormalized author
// fields in sync.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.ID != c.Param("id") {
		utils.RespondError(c, apperrors.ErrUnauthorized)
		return
	}

	var input struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Username       string `json:"username"`
		Password       string `json:"password"`
		Biography      string `json:"biography"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ProfilePicture != "" {
		if user.ProfilePicture != "" {
			if err := uc.media.Destroy(c.Request.Context(), user.ProfilePicture); err != nil {
				utils.RespondError(c, err)
				return
			}
		}
		hostedURL, err := uc.media.Upload(c.Request.Context(), input.ProfilePicture)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		user.ProfilePicture = hostedURL
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Biography != "" {
		user.Biography = input.Biography
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		user.Password = string(hashed)
	}

	if err := uc.users.Update(c.Request.Context(), user); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := uc.posts.UpdateReplyAuthor(c.Request.Context(), user.ID, user.Username, user.ProfilePicture); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "User updated successfully", toProfile(user))
}
