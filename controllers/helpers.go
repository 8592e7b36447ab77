package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

var errInvalidPayload = apperror.NewValidation("Invalid request payload", nil)

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(ctx.Param(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperror.NewValidation("Invalid "+name, err)
	}
	return uint(n), nil
}

func pageFromQuery(ctx *gin.Context) utils.Page {
	return utils.ParsePage(ctx.Query("page"), ctx.Query("limit"))
}

// list wraps a page of items the same way for every list endpoint.
func list(ctx *gin.Context, items interface{}, page utils.Page) {
	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": page,
	})
}

// parseIDList accepts repeated form values and comma separated ones.
func parseIDList(values []string) ([]uint, error) {
	ids := []uint{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil || n == 0 {
				return nil, apperror.NewValidation("Mentioned users must be valid user ids", err)
			}
			ids = append(ids, uint(n))
		}
	}
	return ids, nil
}
