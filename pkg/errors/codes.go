package errors

import "net/http"

// ErrorCode identifies a failure category.  Codes are stable strings so they
// can be emitted as metric labels and matched in tests without string
// comparison on messages.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

// Common error codes.
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "COMMON_000"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeNotFound     ErrorCode = "COMMON_003"
	CodeTimeout      ErrorCode = "COMMON_004"
	CodeConfig       ErrorCode = "COMMON_005"
)

// Terminology-service error codes.  Transport and schema failures are always
// recovered by the pipeline (degraded branch plus warning); they carry codes
// so recovery sites can tell the cases apart.
const (
	CodeRemoteTransport ErrorCode = "LAW_001"
	CodeRemoteSchema    ErrorCode = "LAW_002"
	CodeSnapshotLoad    ErrorCode = "LAW_003"
	CodeCacheError      ErrorCode = "LAW_004"
	CodeCollectAborted  ErrorCode = "LAW_005"
)

// HTTPStatus maps an ErrorCode to the HTTP status the API boundary returns
// for it.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
