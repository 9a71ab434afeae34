package errors

var (
	// Accounts
	ErrUserExists         = AlreadyExists("user already exists")
	ErrUserNotFound       = NotFound("user not found")
	ErrInvalidCredentials = Unauthorized("invalid credentials")
	ErrUnauthorized       = Unauthorized("unauthorized")

	// Follow graph
	ErrSelfFollow       = InvalidArg("you can't follow yourself")
	ErrSelfUnfollow     = InvalidArg("you can't unfollow yourself")
	ErrAlreadyFollowing = InvalidArg("you are already following this user")
	ErrNotFollowing     = InvalidArg("you are not following this user")

	// Posts
	ErrPostNotFound   = NotFound("post not found")
	ErrInvalidPost    = InvalidArg("invalid post data")
	ErrPostTooLong    = InvalidArg("text is too long")
	ErrOwnPostLike    = InvalidArg("you can't like your own post")
	ErrOwnPostUnlike  = InvalidArg("you can't unlike your own post")
	ErrAlreadyLiked   = InvalidArg("post already liked")
	ErrNotLiked       = InvalidArg("post not liked")
	ErrNotPostOwner   = Unauthorized("unauthorized")
	ErrReplyTextEmpty = InvalidArg("invalid post data")

	// Messaging
	ErrMessageEmpty         = InvalidArg("message requires text or an image")
	ErrConversationNotFound = NotFound("conversation not found")
)

func ErrUploadFailed(cause error) error {
	return Wrap(CodeUnavailable, "media upload failed", cause)
}

func ErrDestroyFailed(cause error) error {
	return Wrap(CodeUnavailable, "media destroy failed", cause)
}
