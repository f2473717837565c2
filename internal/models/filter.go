package models

// CourseFilter 课程查询过滤条件
// 零值字段表示不过滤
type CourseFilter struct {
	Level        CourseLevel `json:"level,omitempty"`
	Tag          string      `json:"tag,omitempty"`
	MaxPrice     float64     `json:"max_price,omitempty"`
	ApprovedOnly bool        `json:"approved_only,omitempty"`
}
