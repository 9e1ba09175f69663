package dto

// CreatorWeeklyEarnings 单个创作者的周分成汇总
type CreatorWeeklyEarnings struct {
	CreatorID    int64   `json:"creator_id"`
	CreatorName  string  `json:"creator_name"`
	PhoneNumber  string  `json:"phone_number,omitempty"`
	TotalAmount  float64 `json:"total_amount"`
	ContentCount int     `json:"content_count"`
}

// WeeklyEarningsQuery 周报查询参数，week_start 为周一日期（YYYY-MM-DD）
type WeeklyEarningsQuery struct {
	WeekStart string `form:"week_start" binding:"required"`
}

// PayoutRequest 批量标记打款请求
type PayoutRequest struct {
	EarningIDs []int64 `json:"earning_ids" binding:"required,min=1"`
}

// CreatorDashboard 创作者面板
type CreatorDashboard struct {
	ContentCount  int                   `json:"content_count"`
	TotalEarnings float64               `json:"total_earnings"`
	ContentItems  []CreatorContentStats `json:"content_items"`
}

// CreatorContentStats 创作者内容统计项
type CreatorContentStats struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Views     int    `json:"views"`
	PaidViews int    `json:"paid_views"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

// UserDashboard 用户面板（已购内容）
type UserDashboard struct {
	PurchasedCount   int           `json:"purchased_count"`
	PurchasedContent []ContentItem `json:"purchased_content"`
}
