package constants

// gin 上下文键
const (
	ContextUserID    = "userID"
	ContextRequestID = "requestID"
)

// 请求头
const (
	HeaderRequestID = "X-Request-ID"
)

// Token 类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Redis键前缀
const (
	RedisKeyTokenDenylist = "token:denylist:%s" // token:denylist:jti
)

// 成功提示
const (
	MsgAccountCreated        = "Account created successfully"
	MsgFriendRequestSent     = "Friend request sent successfully"
	MsgFriendRequestAccepted = "Friend request accepted"
	MsgFriendRequestRejected = "Friend request rejected."
	MsgLoggedOut             = "Successfully logged out"
)

// 错误信息
const (
	ErrInvalidParams       = "Invalid request data"
	ErrInternal            = "Internal server error"
	ErrAuthHeaderMissing   = "Authentication credentials were not provided."
	ErrAuthHeaderMalformed = "Authorization header must be: Bearer <token>"
	ErrTokenInvalid        = "Given token not valid for any token type"
	ErrTokenBlacklisted    = "Token is blacklisted"
	ErrInvalidCredentials  = "Invalid Email ID or Password"
	ErrEmailExists         = "Email already exists"
	ErrInvalidEmail        = "Invalid email format"
	ErrPasswordTooLong     = "Ensure this field has no more than 72 bytes."
)

// 好友请求错误信息
const (
	ErrSelfRequest        = "Sender and recipient cannot be the same."
	ErrDuplicateRequest   = "Friend request already sent."
	ErrReverseRequest     = "You already have a friend request"
	ErrRateLimited        = "You have reached the limit of friend requests within a minute."
	ErrRecipientNotFound  = "Recipient does not exist."
	ErrRequestNotFound    = "Invalid recipient or friend request."
	ErrAlreadyAccepted    = "Friend request already accepted."
	ErrCannotRejectAccept = "Cannot reject an accepted friend request."
)
