package dto

// ContentItem 内容列表项 / 详情
type ContentItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	FileType    string  `json:"file_type"`
	FileSize    int64   `json:"file_size,omitempty"`
	CreatorName string  `json:"creator_name"`
	Price       float64 `json:"price"`
	Views       int     `json:"views"`
	CreatedAt   string  `json:"created_at"`
	ExpiresAt   string  `json:"expires_at"`
}

// ContentListQuery 内容列表查询参数
type ContentListQuery struct {
	Offset int `form:"offset" binding:"omitempty,min=0"`
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// StreamResponse 播放地址响应
type StreamResponse struct {
	URL string `json:"url"`
}
