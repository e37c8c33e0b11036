package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	CredentialsMismatch failure.ErrorCode = "CredentialsMismatch"
	SessionExpired      failure.ErrorCode = "SessionExpired"
	CSRFTokenInvalid    failure.ErrorCode = "CSRFTokenInvalid" //nolint:gosec // false positive

	CompanyNotFound       failure.ErrorCode = "CompanyNotFound"
	SkillNotFound         failure.ErrorCode = "SkillNotFound"
	ConfigurationNotFound failure.ErrorCode = "ConfigurationNotFound"
	ConfigurationLocked   failure.ErrorCode = "ConfigurationLocked"
	InvalidCompanyID      failure.ErrorCode = "InvalidCompanyID"
	InvalidJobType        failure.ErrorCode = "InvalidJobType"
	InvalidChatMessage    failure.ErrorCode = "InvalidChatMessage"
	JobAlreadyRunning     failure.ErrorCode = "JobAlreadyRunning"

	WarehouseUnavailable failure.ErrorCode = "WarehouseUnavailable"
	ScoringUnavailable   failure.ErrorCode = "ScoringUnavailable"
	ChatUnavailable      failure.ErrorCode = "ChatUnavailable"
	CloudRunUnavailable  failure.ErrorCode = "CloudRunUnavailable"
)
