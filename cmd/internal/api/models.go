package api

import "encoding/json"

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type settingsResponse struct {
	Username string          `json:"username"`
	Settings json.RawMessage `json:"settings"`
}

type runtimeResponse struct {
	Runtime json.RawMessage `json:"runtime"`
}
