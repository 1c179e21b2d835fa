package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Catalog 错误：NOT_FOUND, ALREADY_EXISTS, INVALID_INPUT
//   - Recall 错误：NO_PREDICTION（邻居中无人评分 / 相似度权重和为零）
//   - Cache 错误：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "ALREADY_EXISTS"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "recall", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeAlreadyExists = "ALREADY_EXISTS" // 实体重复注册
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效（非法评分值等）
	ErrorCodeNoPrediction  = "NO_PREDICTION"  // 无法给出预测（数据不足）
)

// 模块名称常量
const (
	ModuleCatalog = "catalog" // 目录存储模块
	ModuleRecall  = "recall"  // 召回/打分模块
	ModuleCache   = "cache"   // KV 缓存模块
)

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsAlreadyExists 检查错误是否为 ALREADY_EXISTS。
func IsAlreadyExists(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeAlreadyExists
	}
	return false
}

// IsNoPrediction 检查错误是否为 NO_PREDICTION。
// 常规的数据不足场景：调用方应将其视为"无预测值"，而非故障。
func IsNoPrediction(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNoPrediction
	}
	return false
}
