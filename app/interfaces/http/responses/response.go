package responses

type ErrorResponse struct {
	Code          string `json:"code"`
	Error         string `json:"error"`
	ErrorInstance error  `json:"-"`
}

type GeneralResponse[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

const ResponseCodeOk = "000000"

func NewErrorResponse(code string, err error) ErrorResponse {
	return ErrorResponse{
		Code:          code,
		Error:         err.Error(),
		ErrorInstance: err,
	}
}
