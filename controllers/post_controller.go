package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"threads-server/models"
	apperrors "threads-server/pkg/errors"
	"threads-server/repository"
	"threads-server/services"
	"threads-server/utils"
)

type PostController struct {
	posts repository.PostStore
	users repository.UserStore
	media services.MediaUploader
}

func NewPostController(posts repository.PostStore, users repository.UserStore, media services.MediaUploader) *PostController {
	return &PostController{posts: posts, users: users, media: media}
}

func (pc *PostController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		PostedBy string `json:"postedBy"`
		Text     string `json:"text"`
		Image    string `json:"image"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.PostedBy == "" || input.Text == "" {
		utils.RespondError(c, apperrors.ErrInvalidPost)
		return
	}
	if input.PostedBy != user.ID {
		utils.RespondError(c, apperrors.ErrUnauthorized)
		return
	}
	if len(input.Text) > models.MaxPostTextLength {
		utils.RespondError(c, apperrors.ErrPostTooLong)
		return
	}

	image := input.Image
	if image != "" {
		hostedURL, err := pc.media.Upload(c.Request.Context(), image)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		image = hostedURL
	}

	post := &models.Post{
		PostedBy: input.PostedBy,
		Text:     input.Text,
		Image:    image,
	}
	if err := pc.posts.Create(c.Request.Context(), post); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Post created successfully", post)
}

func (pc *PostController) Get(c *gin.Context) {
	post, err := pc.posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if post == nil {
		utils.RespondError(c, apperrors.ErrPostNotFound)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post found successfully", post)
}

// GetAllByUsername lists a user's posts, newest first.
func (pc *PostController) GetAllByUsername(c *gin.Context) {
	user, err := pc.users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if user == nil {
		utils.RespondError(c, apperrors.ErrUserNotFound)
		return
	}

	posts, err := pc.posts.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post found successfully", posts)
}

// Feed lists posts by everyone the caller follows, newest first.
func (pc *PostController) Feed(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	following, err := pc.users.FollowingIDs(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	posts, err := pc.posts.ListFeed(c.Request.Context(), following)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Posts found successfully", posts)
}

// Delete removes the caller's own post and destroys its hosted image.
func (pc *PostController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	post, err := pc.posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if post == nil {
		utils.RespondError(c, apperrors.ErrPostNotFound)
		return
	}
	if post.PostedBy != user.ID {
		utils.RespondError(c, apperrors.ErrNotPostOwner)
		return
	}

	if post.Image != "" {
		if err := pc.media.Destroy(c.Request.Context(), post.Image); err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	if err := pc.posts.Delete(c.Request.Context(), post.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post deleted successfully", nil)
}

func (pc *PostController) Like(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	post, err := pc.posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if post == nil {
		utils.RespondError(c, apperrors.ErrPostNotFound)
		return
	}
	if post.PostedBy == user.ID {
		utils.RespondError(c, apperrors.ErrOwnPostLike)
		return
	}

	liked, err := pc.posts.HasLike(c.Request.Context(), post.ID, user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if liked {
		utils.RespondError(c, apperrors.ErrAlreadyLiked)
		return
	}

	if err := pc.posts.AddLike(c.Request.Context(), post.ID, user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post liked successfully", nil)
}

func (pc *PostController) Unlike(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	post, err := pc.posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if post == nil {
		utils.RespondError(c, apperrors.ErrPostNotFound)
		return
	}
	if post.PostedBy == user.ID {
		utils.RespondError(c, apperrors.ErrOwnPostUnlike)
		return
	}

	liked, err := pc.posts.HasLike(c.Request.Context(), post.ID, user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !liked {
		utils.RespondError(c, apperrors.ErrNotLiked)
		return
	}

	if err := pc.posts.RemoveLike(c.Request.Context(), post.ID, user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post unliked successfully", nil)
}

// Reply appends a reply carrying the caller's denormalized author fields.
func (pc *PostController) Reply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Text == "" {
		utils.RespondError(c, apperrors.ErrReplyTextEmpty)
		return
	}

	post, err := pc.posts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if post == nil {
		utils.RespondError(c, apperrors.ErrPostNotFound)
		return
	}

	reply := &models.PostReply{
		PostID:         post.ID,
		UserID:         user.ID,
		Text:           input.Text,
		Name:           user.Name,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
	}
	if err := pc.posts.AddReply(c.Request.Context(), reply); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Post replied successfully", reply)
}
