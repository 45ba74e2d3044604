package xerr

import "fmt"

// Marketplace error codes; the 42xx block is reserved for listing/settlement
// rejections surfaced to callers.
const (
	OK                 = 200
	RequestParamsError = 400
	RecordNotFound     = 404
	ServerCommonError  = 500
	DbError            = 501

	AssetNotOwned     = 4201
	DuplicateListing  = 4202
	ListingNotFound   = 4203
	InvalidBuyer      = 4204
	InsufficientFunds = 4205
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "internal server error"
	case RequestParamsError:
		return "bad request params"
	case DbError:
		return "database busy"
	case RecordNotFound:
		return "record not found"
	case AssetNotOwned:
		return "asset not held by lister"
	case DuplicateListing:
		return "asset already listed"
	case ListingNotFound:
		return "listing not found"
	case InvalidBuyer:
		return "buyer and seller are the same account"
	case InsufficientFunds:
		return "insufficient funds"
	default:
		return "unknown error"
	}
}
