package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusServiceUnavailable - 503: 服务暂不可用.
	StatusServiceUnavailable = 503
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrForbidden - 403: 没有访问权限.
	ErrForbidden
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
	// ErrGuardNotFound - 404: 保安不存在.
	ErrGuardNotFound
)

// 考勤策略错误码 (102xxx). 策略拒绝是正常业务结果而非系统故障，
// 事件会以失败结果落库，保安需到岗后重试.
const (
	// ErrGeofenceRejected - 400: 当前位置超出电子围栏范围.
	ErrGeofenceRejected int = iota + 102000
	// ErrOutsideShiftWindow - 400: 当前时间不在排班时段内.
	ErrOutsideShiftWindow
	// ErrInvalidCoordinate - 400: 坐标非法.
	ErrInvalidCoordinate
)

// 配置错误码 (103xxx). 与策略拒绝不同，配置错误需要管理员处理，
// 保安重试无效.
const (
	// ErrGuardNotConfigured - 400: 保安未配置值守位置.
	ErrGuardNotConfigured int = iota + 103000
	// ErrNoShiftToday - 400: 保安当日没有排班.
	ErrNoShiftToday
	// ErrLocationNotFound - 404: 值守位置不存在.
	ErrLocationNotFound
	// ErrShiftNotFound - 404: 排班记录不存在.
	ErrShiftNotFound
	// ErrShiftAlreadyExist - 409: 该保安当日已有排班.
	ErrShiftAlreadyExist
)

// 紧急警报相关错误码 (104xxx).
const (
	// ErrAlertNotFound - 404: 警报不存在.
	ErrAlertNotFound int = iota + 104000
	// ErrAlertPublishFailed - 500: 警报广播失败.
	ErrAlertPublishFailed
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
	// ErrStoreUnavailable - 503: 事件存储暂不可用，请重试.
	ErrStoreUnavailable
)

// 事件报告相关错误码 (106xxx).
const (
	// ErrIncidentNotFound - 404: 事件报告不存在.
	ErrIncidentNotFound int = iota + 106000
)
