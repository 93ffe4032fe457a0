package gateway

import (
	"fmt"
)

// NetworkError 网络错误：请求没有得到任何响应
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("无法连接到服务器: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError 服务端错误：收到非 2xx 响应
// Message 按 message -> msg -> 状态文本的顺序从响应体提取，原样透传给调用方
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("服务器返回错误状态码: %d", e.Status)
}

// ResponseShapeError 响应格式错误：2xx 响应缺少预期字段
type ResponseShapeError struct {
	Detail string
}

func (e *ResponseShapeError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "invalid response"
}

// EmptyResponseError 空响应错误：2xx 响应没有携带必需的响应体
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "No data received from server"
}
