package model

import "time"

// Run 是一次完整执行的记录，写入历史库时不包含任何凭据。
type Run struct {
	ID         string              `json:"id"`
	Service    string              `json:"service"`
	StartedAt  time.Time           `json:"startedAt"`
	FinishedAt time.Time           `json:"finishedAt"`
	Reports    []AccountReport     `json:"reports"`
	Payload    NotificationPayload `json:"payload"`
}
