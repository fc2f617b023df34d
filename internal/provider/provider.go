package provider

import (
	"context"

	"signin_engine/internal/model"
)

// Provider 负责为单个账号建立一个已登录的会话。
// 每次 Login 都是全新的 HTTP 客户端和 Cookie，会话之间互不共享。
type Provider interface {
	Name() string
	Login(ctx context.Context, account model.Account) (Session, error)
}

// Session 是登录后的会话，只属于一个账号的本次处理。
// 返回 error 表示请求或解析异常；业务失败以 ActionResult 的形式返回。
type Session interface {
	SignIn(ctx context.Context) (model.ActionResult, error)
	Lottery(ctx context.Context) (model.ActionResult, error)
}
