package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"signin_engine/internal/model"
)

// finishSingle 推送并记录只有一个"账号"的站点（Cookie 登录）的结果。
func finishSingle(ctx context.Context, service string, startedAt time.Time, result model.ActionResult, payload model.NotificationPayload) model.Run {
	run := model.Run{
		ID:         uuid.NewString(),
		Service:    service,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Reports: []model.AccountReport{{
			Identifier: service,
			SignIn:     result,
			Lottery:    model.Skipped(model.ActionLottery),
		}},
		Payload: payload,
	}

	appCtx.dispatcher.Dispatch(ctx, payload)
	if h := appCtx.history(); h != nil {
		if err := h.SaveRun(ctx, run); err != nil {
			appCtx.bus.Log("warn", "写入运行历史失败", map[string]any{"runId": run.ID, "error": err.Error()})
		}
	}
	return run
}
