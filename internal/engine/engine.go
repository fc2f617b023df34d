package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"signin_engine/internal/config"
	"signin_engine/internal/logbus"
	"signin_engine/internal/model"
	"signin_engine/internal/provider"
	"signin_engine/internal/report"
	"signin_engine/internal/utils"
)

// Dispatcher 由 notify.Dispatcher 实现，发送失败自行回退，不向上返回错误。
type Dispatcher interface {
	Dispatch(ctx context.Context, p model.NotificationPayload)
}

// History 持久化运行记录；失败只记日志，不影响本次运行结果。
type History interface {
	SaveRun(ctx context.Context, run model.Run) error
}

type Options struct {
	Provider   provider.Provider
	Bus        *logbus.Bus
	Limits     config.LimitsConfig
	Title      string
	Dispatcher Dispatcher
	History    History

	// 以下字段用于测试，零值时使用真实实现。
	Sleep utils.SleepFunc
	RandN func(n int64) int64
	Now   func() time.Time
}

// Engine 按顺序处理账号：每个账号独立登录、签到、抽奖，互不影响。
type Engine struct {
	provider   provider.Provider
	bus        *logbus.Bus
	limits     config.LimitsConfig
	title      string
	dispatcher Dispatcher
	history    History

	sleep utils.SleepFunc
	randN func(n int64) int64
	now   func() time.Time
}

func New(opts Options) *Engine {
	e := &Engine{
		provider:   opts.Provider,
		bus:        opts.Bus,
		limits:     opts.Limits,
		title:      opts.Title,
		dispatcher: opts.Dispatcher,
		history:    opts.History,
		sleep:      opts.Sleep,
		randN:      opts.RandN,
		now:        opts.Now,
	}
	if e.sleep == nil {
		e.sleep = utils.Sleep
	}
	if e.randN == nil {
		e.randN = rand.Int63n
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Run 处理所有账号，然后汇总、推送并写入历史。返回值中的报告顺序与 accounts 一致。
func (e *Engine) Run(ctx context.Context, accounts []model.Account) model.Run {
	run := model.Run{
		ID:        uuid.NewString(),
		Service:   e.provider.Name(),
		StartedAt: e.now(),
	}
	e.bus.Log("info", "开始执行签到", map[string]any{"runId": run.ID, "accounts": len(accounts)})

	run.Reports = e.processAll(ctx, accounts)
	run.FinishedAt = e.now()
	run.Payload = report.Render(e.title, run.Reports)

	e.publish(ctx, run)
	e.bus.Log("info", "签到执行完毕", map[string]any{
		"runId":    run.ID,
		"duration": run.FinishedAt.Sub(run.StartedAt).String(),
	})
	return run
}

func (e *Engine) processAll(ctx context.Context, accounts []model.Account) []model.AccountReport {
	var limiter *rate.Limiter
	if interval := e.limits.AccountInterval(); interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	reports := make([]model.AccountReport, 0, len(accounts))
	for i, acc := range accounts {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				reports = append(reports, cancelled(acc, err))
				continue
			}
		}
		e.bus.Log("info", "处理账号", map[string]any{
			"index":   i + 1,
			"account": report.MaskIdentifier(acc.Username),
		})
		reports = append(reports, e.processAccount(ctx, acc))
	}
	return reports
}

// processAccount 是账号之间的隔离边界：任何错误或 panic 都在这里变成结果。
func (e *Engine) processAccount(ctx context.Context, acc model.Account) (rep model.AccountReport) {
	rep = model.AccountReport{
		Identifier: report.MaskIdentifier(acc.Username),
		SignIn:     model.Skipped(model.ActionSignIn),
		Lottery:    model.Skipped(model.ActionLottery),
	}
	signDone := false
	loggedIn := false

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("panic: %v", r)
		e.bus.Log("error", "账号处理异常", map[string]any{"account": rep.Identifier, "error": err.Error()})
		if !loggedIn {
			rep.SignIn = model.Failed(model.ActionSignIn, "登录失败: "+err.Error())
			rep.Lottery = model.Skipped(model.ActionLottery)
			return
		}
		if !signDone {
			rep.SignIn = operationFailed(model.ActionSignIn, err)
		}
		rep.Lottery = operationFailed(model.ActionLottery, err)
	}()

	sess, err := e.provider.Login(ctx, acc)
	if err != nil {
		e.bus.Log("warn", "登录失败", map[string]any{"account": rep.Identifier, "error": err.Error()})
		rep.SignIn = model.Failed(model.ActionSignIn, "登录失败: "+err.Error())
		return rep
	}
	loggedIn = true

	signRes, err := sess.SignIn(ctx)
	if err != nil {
		e.bus.Log("error", "签到操作异常", map[string]any{"account": rep.Identifier, "error": err.Error()})
		rep.SignIn = operationFailed(model.ActionSignIn, err)
		rep.Lottery = operationFailed(model.ActionLottery, err)
		return rep
	}
	rep.SignIn = signRes
	signDone = true

	if !e.courtesyPause(ctx) {
		rep.Lottery = operationFailed(model.ActionLottery, ctx.Err())
		return rep
	}

	lotteryRes, err := sess.Lottery(ctx)
	if err != nil {
		e.bus.Log("error", "抽奖操作异常", map[string]any{"account": rep.Identifier, "error": err.Error()})
		rep.Lottery = operationFailed(model.ActionLottery, err)
		return rep
	}
	rep.Lottery = lotteryRes

	e.bus.Log("info", "账号处理完成", map[string]any{
		"account": rep.Identifier,
		"signIn":  string(rep.SignIn.Outcome),
		"lottery": string(rep.Lottery.Outcome),
	})
	return rep
}

// courtesyPause 在签到和抽奖之间随机停顿，区间为 [min, max]。
func (e *Engine) courtesyPause(ctx context.Context) bool {
	lo, hi := e.limits.CourtesyRange()
	d := lo
	if span := int64(hi - lo); span > 0 {
		d += time.Duration(e.randN(span + 1))
	}
	return e.sleep(ctx, d)
}

func (e *Engine) publish(ctx context.Context, run model.Run) {
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(ctx, run.Payload)
	}
	if e.history == nil {
		return
	}
	if err := e.history.SaveRun(ctx, run); err != nil {
		e.bus.Log("warn", "写入运行历史失败", map[string]any{"runId": run.ID, "error": err.Error()})
	}
}

func operationFailed(kind model.ActionKind, err error) model.ActionResult {
	return model.Failed(kind, "操作异常: "+err.Error())
}

func cancelled(acc model.Account, err error) model.AccountReport {
	return model.AccountReport{
		Identifier: report.MaskIdentifier(acc.Username),
		SignIn:     model.Failed(model.ActionSignIn, "已取消: "+err.Error()),
		Lottery:    model.Skipped(model.ActionLottery),
	}
}
