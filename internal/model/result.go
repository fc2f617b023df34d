package model

type ActionKind string

const (
	ActionSignIn  ActionKind = "signin"
	ActionLottery ActionKind = "lottery"
)

type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeAlreadyDone Outcome = "already_done"
	OutcomeFailed      Outcome = "failed"
	// OutcomeSkipped 表示动作没有执行（例如登录失败后的抽奖）。
	OutcomeSkipped Outcome = "skipped"
)

type ActionResult struct {
	Kind    ActionKind `json:"kind"`
	Outcome Outcome    `json:"outcome"`
	Detail  string     `json:"detail,omitempty"`
}

func Succeeded(kind ActionKind, detail string) ActionResult {
	return ActionResult{Kind: kind, Outcome: OutcomeSuccess, Detail: detail}
}

func AlreadyDone(kind ActionKind, detail string) ActionResult {
	return ActionResult{Kind: kind, Outcome: OutcomeAlreadyDone, Detail: detail}
}

func Failed(kind ActionKind, reason string) ActionResult {
	return ActionResult{Kind: kind, Outcome: OutcomeFailed, Detail: reason}
}

func Skipped(kind ActionKind) ActionResult {
	return ActionResult{Kind: kind, Outcome: OutcomeSkipped}
}

// AccountReport 是单个账号的处理结果，Identifier 已脱敏。
type AccountReport struct {
	Identifier string       `json:"identifier"`
	SignIn     ActionResult `json:"signIn"`
	Lottery    ActionResult `json:"lottery"`
}

type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
