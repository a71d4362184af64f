package response

import "campusconnect/lib/clock"

type Response struct {
	Data          interface{}       `json:"data,omitempty"`
	Success       bool              `json:"success"`
	StatusMessage string            `json:"status_message"`
	Fields        map[string]string `json:"fields,omitempty"`
	Timestamp     string            `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:          data,
		Success:       true,
		StatusMessage: "Success",
		Timestamp:     clock.Now(),
	}
}

func Error(message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     clock.Now(),
	}
}

// Invalid reports a validation failure with per-field messages.
func Invalid(message string, fields map[string]string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Fields:        fields,
		Timestamp:     clock.Now(),
	}
}
