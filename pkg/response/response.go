package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// Success writes 200 with data.
func Success(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Msg:  "success",
		Data: data,
	})
}

// Created writes 201 with data.
func Created(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusCreated, Response{
		Code: http.StatusCreated,
		Msg:  "created",
		Data: data,
	})
}

// Error writes httpStatus with msg; the HTTP status doubles as the code.
func Error(ctx *gin.Context, httpStatus int, msg string) {
	ctx.JSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
	})
}

// Abort is Error for middleware: it stops the handler chain.
func Abort(ctx *gin.Context, httpStatus int, msg string) {
	ctx.AbortWithStatusJSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
	})
}
