package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"friendlink/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Message 成功提示
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Error 业务错误，统一为 {"error": msg}
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// Internal 记录原因，对外只返回通用错误
func Internal(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"requestID": c.GetString(constants.ContextRequestID),
		"path":      c.Request.URL.Path,
		"error":     fmt.Sprintf("%+v", err),
	}).Error("请求处理失败")
	Error(c, http.StatusInternalServerError, constants.ErrInternal)
}

// Validation 把绑定/校验错误转成字段级错误
func Validation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": FieldErrors(err)})
}

// FieldErrors 字段名（json 名）到错误描述
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"non_field_errors": constants.ErrInvalidParams}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[jsonName(fe.Field())] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "gt", "min":
		return "Ensure this value is greater than " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}

// jsonName 把 Go 字段名 FirstName/RecipientID 转为 first_name/recipient_id
func jsonName(field string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range field {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}
