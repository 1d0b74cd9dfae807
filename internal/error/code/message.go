package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",
	ErrForbidden:       "没有访问权限",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",
	ErrGuardNotFound:         "保安不存在",

	// 考勤策略错误码
	ErrGeofenceRejected:   "当前位置超出值守区域范围",
	ErrOutsideShiftWindow: "当前时间不在排班时段内",
	ErrInvalidCoordinate:  "坐标非法",

	// 配置错误码
	ErrGuardNotConfigured: "账户未配置值守位置，请联系管理员",
	ErrNoShiftToday:       "今日没有排班，请联系管理员",
	ErrLocationNotFound:   "值守位置不存在",
	ErrShiftNotFound:      "排班记录不存在",
	ErrShiftAlreadyExist:  "该保安当日已有排班",

	// 紧急警报相关错误码
	ErrAlertNotFound:      "警报不存在",
	ErrAlertPublishFailed: "警报广播失败",

	// 数据库相关错误码
	ErrDatabase:         "数据库错误",
	ErrRecordNotFound:   "记录不存在",
	ErrStoreUnavailable: "事件存储暂不可用，请稍后重试",

	// 事件报告相关错误码
	ErrIncidentNotFound: "事件报告不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrGuardNotFound:         StatusNotFound,

	// 考勤策略错误码
	ErrGeofenceRejected:   StatusBadRequest,
	ErrOutsideShiftWindow: StatusBadRequest,
	ErrInvalidCoordinate:  StatusBadRequest,

	// 配置错误码
	ErrGuardNotConfigured: StatusBadRequest,
	ErrNoShiftToday:       StatusBadRequest,
	ErrLocationNotFound:   StatusNotFound,
	ErrShiftNotFound:      StatusNotFound,
	ErrShiftAlreadyExist:  StatusConflict,

	// 紧急警报相关错误码
	ErrAlertNotFound:      StatusNotFound,
	ErrAlertPublishFailed: StatusInternalServerError,

	// 数据库相关错误码
	ErrDatabase:         StatusInternalServerError,
	ErrRecordNotFound:   StatusNotFound,
	ErrStoreUnavailable: StatusServiceUnavailable,

	// 事件报告相关错误码
	ErrIncidentNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
