package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/paywall_go_server/internal/api/middleware"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/response"
	"github.com/qs3c/paywall_go_server/internal/service"
)

type ContentHandler struct {
	contentService *service.ContentService
}

func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// Upload 创作者上传内容（multipart 表单：file + title + description）
// POST /api/v1/content
func (h *ContentHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		response.ParamError(c, "标题不能为空")
		return
	}
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传媒体文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	item, err := h.contentService.Upload(userID, title, description,
		contentType, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotCreator):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrUnsupportedMedia),
			errors.Is(err, service.ErrFileTooLarge):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "上传成功", item)
}

// List 内容列表
// GET /api/v1/content?offset=0&limit=20
func (h *ContentHandler) List(c *gin.Context) {
	var query dto.ContentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.contentService.List(&query)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, query.Offset, query.Limit, items)
}

// Get 内容详情
// GET /api/v1/content/:id
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.contentService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, item)
}

// Stream 获取播放地址（创作者本人或已购用户）
// GET /api/v1/content/:id/stream
func (h *ContentHandler) Stream(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.contentService.Stream(userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotPurchased):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ListPurchased 当前用户已购内容
// GET /api/v1/user/purchases
func (h *ContentHandler) ListPurchased(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.contentService.ListPurchased(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}
