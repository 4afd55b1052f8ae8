package response

// Response is the JSON envelope returned by every API endpoint.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Ok wraps a successful payload.
func Ok(data interface{}) Response {
	return Response{
		Status: "ok",
		Data:   data,
	}
}

// Error wraps a failure message.
func Error(msg string) Response {
	return Response{
		Status: "error",
		Error:  msg,
	}
}
