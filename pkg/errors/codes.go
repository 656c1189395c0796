package errors

// 공통 에러 코드 정의
const (
	// 일반적인 에러 코드
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"

	// 인증 서비스 전용 에러 코드
	ErrLocked          = "LOCKED"            // 계정 잠금
	ErrSetupRequired   = "SETUP_REQUIRED"    // 초기 설정 미완료
	ErrTooManyRequests = "TOO_MANY_REQUESTS" // 요청 속도 제한
)
