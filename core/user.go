package core

// User 是目录中的用户实体。
// Preferences/Demographics 为可选静态属性，打分链路只依赖评分数据，
// 这两个字段留给上层业务（冷启动、画像展示等）使用。
type User struct {
	ID           string
	Preferences  map[string]any
	Demographics map[string]any
}

func NewUser(id string) *User {
	return &User{ID: id}
}
