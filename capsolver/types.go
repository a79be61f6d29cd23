package capsolver

// Task statuses reported by the service. A task that reached READY or
// FAILED is terminal and its handle is never polled again.
const (
	STATUS_IDLE       = "idle"
	STATUS_PROCESSING = "processing"
	STATUS_READY      = "ready"
	STATUS_FAILED     = "failed"
)

type TaskPayload struct {
	Type       string `json:"type"`
	WebsiteURL string `json:"websiteURL"`
	WebsiteKey string `json:"websiteKey"`
}

type CreateTaskBody struct {
	Key  string      `json:"clientKey"`
	Task TaskPayload `json:"task"`
}

type CreateTaskResponse struct {
	Error            int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	Task             string `json:"taskId"`
}

type TaskResultBody struct {
	Key  string `json:"clientKey"`
	Task string `json:"taskId"`
}

type TaskResultResponse struct {
	Error            int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	Status           string `json:"status"`
	Solution         struct {
		Token     string `json:"gRecaptchaResponse"`
		Useragent string `json:"userAgent"`
	} `json:"solution"`
}

type BalanceBody struct {
	Key string `json:"clientKey"`
}

type BalanceResponse struct {
	Error            int     `json:"errorId"`
	ErrorCode        string  `json:"errorCode"`
	ErrorDescription string  `json:"errorDescription"`
	Balance          float64 `json:"balance"`
}
