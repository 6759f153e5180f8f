package controllers

// Common request/response types for HTTP controllers

// sendReq represents a request to greet a name.
type sendReq struct {
	Name string `json:"name"`
}

// messageResp carries one greeting. It is also the payload of each SSE event.
type messageResp struct {
	Message string `json:"message"`
}

// listResp carries every persisted greeting in storage order.
type listResp struct {
	Messages []string `json:"messages"`
}
