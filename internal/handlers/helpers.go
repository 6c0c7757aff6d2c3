// Package handlers exposes the services over the JSON API.
package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
)

// uploadField is the multipart field carrying the image
const uploadField = "file"

// bindJSON decodes the body into req, answering 400 on malformed input
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondError(c, apperr.Validation("invalid request body", map[string]string{
			"body": err.Error(),
		}))
		return false
	}
	return true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, apperr.Unauthorized("user not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

func currentStore(c *gin.Context) (uuid.UUID, bool) {
	storeID, ok := middleware.StoreID(c)
	if !ok {
		middleware.RespondError(c, apperr.Forbidden("store setup not completed"))
		return uuid.Nil, false
	}
	return storeID, true
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondError(c, apperr.Validation("invalid "+name+" ID", nil))
		return uuid.Nil, false
	}
	return id, true
}

// formFile opens the uploaded image. The caller closes the file.
func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		middleware.RespondError(c, apperr.Validation("no file uploaded", map[string]string{
			uploadField: "required",
		}))
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		middleware.RespondError(c, apperr.Internal(err, "failed to open upload"))
		return nil, nil, false
	}
	return file, header, true
}
