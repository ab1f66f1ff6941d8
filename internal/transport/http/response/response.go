package response

import "net/http"

type ErrResp struct {
	Error string `json:"error"`
}

type MsgResp struct {
	Message string `json:"message"`
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) ErrResp {
	if customMsg != "" {
		return ErrResp{Error: customMsg}
	}
	if msg, ok := CodeMsgMap[code]; ok {
		return ErrResp{Error: msg}
	}
	return ErrResp{Error: http.StatusText(code)}
}

func Msg(msg string) MsgResp { return MsgResp{Message: msg} }
