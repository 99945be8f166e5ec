package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized  = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidOperator = Definition{Code: "INVALID_OPERATOR", Message: "Invalid operator ID format"}
)

// 跟进引擎错误。
var (
	FollowUpDisabled    = Definition{Code: "FOLLOWUP_DISABLED", Message: "Follow-up type disabled for this account"}
	FollowUpTypeInvalid = Definition{Code: "FOLLOWUP_TYPE_INVALID", Message: "Unknown follow-up action type"}
	EngineNotRunning    = Definition{Code: "ENGINE_NOT_RUNNING", Message: "Follow-up engine is not running"}
	EngineAlreadyRunning = Definition{Code: "ENGINE_ALREADY_RUNNING", Message: "Follow-up engine is already running"}
)

// 设置与模板错误。
var (
	SettingsInvalid  = Definition{Code: "SETTINGS_INVALID", Message: "Follow-up settings invalid"}
	TemplateNotFound = Definition{Code: "TEMPLATE_NOT_FOUND", Message: "Message template not found"}
	TemplateEmpty    = Definition{Code: "TEMPLATE_EMPTY", Message: "Message template content empty"}
)

// 账号与订单错误。
var (
	AccountNotFound = Definition{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}
	OrderNotFound   = Definition{Code: "ORDER_NOT_FOUND", Message: "Order not found"}
)

// token 包内部错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrOperatorNotFound             = errors.New("operator id not found in token")
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	InvalidOperator.Code:      InvalidOperator,
	FollowUpDisabled.Code:     FollowUpDisabled,
	FollowUpTypeInvalid.Code:  FollowUpTypeInvalid,
	EngineNotRunning.Code:     EngineNotRunning,
	EngineAlreadyRunning.Code: EngineAlreadyRunning,
	SettingsInvalid.Code:      SettingsInvalid,
	TemplateNotFound.Code:     TemplateNotFound,
	TemplateEmpty.Code:        TemplateEmpty,
	AccountNotFound.Code:      AccountNotFound,
	OrderNotFound.Code:        OrderNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
