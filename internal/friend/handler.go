package friend

import (
	"errors"
	"net/http"

	"friendlink/internal/auth"
	"friendlink/internal/constants"
	"friendlink/internal/response"
	"friendlink/internal/user"

	"github.com/gin-gonic/gin"
)

// SendRequest 发送好友请求
type SendRequest struct {
	RecipientID uint `json:"recipient_id" binding:"required"`
}

// ActionRequest 接受/拒绝好友请求
type ActionRequest struct {
	RequestID uint `json:"request_id" binding:"required"`
}

// Handler 好友相关 HTTP 接口
type Handler struct {
	ledger   *Ledger
	queries  *Queries
	accounts *user.AccountService
}

// NewHandler 创建好友接口
func NewHandler(ledger *Ledger, queries *Queries, accounts *user.AccountService) *Handler {
	return &Handler{ledger: ledger, queries: queries, accounts: accounts}
}

// 不同操作下 ErrAlreadyAccepted 的提示不同
const (
	opSend   = "send"
	opAccept = "accept"
	opReject = "reject"
)

// MessageFor 业务错误对应的用户提示；未知错误返回 false
func MessageFor(op string, err error) (string, bool) {
	switch {
	case errors.Is(err, ErrSelfRequest):
		return constants.ErrSelfRequest, true
	case errors.Is(err, ErrDuplicateRequest):
		return constants.ErrDuplicateRequest, true
	case errors.Is(err, ErrReverseRequestExists):
		return constants.ErrReverseRequest, true
	case errors.Is(err, ErrRateLimited):
		return constants.ErrRateLimited, true
	case errors.Is(err, ErrRecipientNotFound):
		return constants.ErrRecipientNotFound, true
	case errors.Is(err, ErrRequestNotFound):
		return constants.ErrRequestNotFound, true
	case errors.Is(err, ErrAlreadyAccepted):
		if op == opReject {
			return constants.ErrCannotRejectAccept, true
		}
		return constants.ErrAlreadyAccepted, true
	}
	return "", false
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, ErrSenderNotFound) {
		response.Error(c, http.StatusUnauthorized, constants.ErrTokenInvalid)
		return
	}
	if msg, ok := MessageFor(op, err); ok {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}
	response.Internal(c, err)
}

func callerID(c *gin.Context) (uint, bool) {
	id, ok := auth.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, constants.ErrAuthHeaderMissing)
	}
	return id, ok
}

// SendFriendRequest POST /send-friend-request
func (h *Handler) SendFriendRequest(c *gin.Context) {
	me, ok := callerID(c)
	if !ok {
		return
	}
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	id, err := h.ledger.Send(c.Request.Context(), me, req.RecipientID)
	if err != nil {
		h.fail(c, opSend, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": constants.MsgFriendRequestSent, "id": id})
}

// AcceptFriendRequest POST /accept-friend-request
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	me, ok := callerID(c)
	if !ok {
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.ledger.Accept(c.Request.Context(), req.RequestID, me); err != nil {
		h.fail(c, opAccept, err)
		return
	}
	response.Message(c, http.StatusOK, constants.MsgFriendRequestAccepted)
}

// RejectFriendRequest POST /reject-friend-request
func (h *Handler) RejectFriendRequest(c *gin.Context) {
	me, ok := callerID(c)
	if !ok {
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.ledger.Reject(c.Request.Context(), req.RequestID, me); err != nil {
		h.fail(c, opReject, err)
		return
	}
	response.Message(c, http.StatusOK, constants.MsgFriendRequestRejected)
}

// ListFriends GET /friends
func (h *Handler) ListFriends(c *gin.Context) {
	me, ok := callerID(c)
	if !ok {
		return
	}

	ids, err := h.queries.ListFriends(c.Request.Context(), me)
	if err != nil {
		response.Internal(c, err)
		return
	}
	users, err := h.accounts.GetUsersByIDs(c.Request.Context(), ids)
	if err != nil {
		response.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Briefs(users))
}

// ListPending GET /pending-requests
func (h *Handler) ListPending(c *gin.Context) {
	me, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.queries.ListPending(c.Request.Context(), me)
	if err != nil {
		response.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}
