package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"signin_engine/internal/config"
	"signin_engine/internal/model"
	"signin_engine/internal/provider/fnnas"
)

func fnnasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnnas",
		Short: "飞牛论坛每日打卡（FN_COOKIE）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg
			if err := cfg.RequireFNNAS(); err != nil {
				appCtx.dispatcher.Dispatch(cmd.Context(), fnnasConfigNotification(err))
				return err
			}
			started := time.Now()
			appCtx.bus.Log("info", "开始执行飞牛社区自动签到任务", nil)

			rep, err := fnnas.New(cfg.FNNAS, cfg.Proxy, appCtx.bus).CheckIn(cmd.Context())
			if err != nil {
				return err
			}
			result := model.ActionResult{Kind: model.ActionSignIn, Outcome: rep.Outcome, Detail: rep.Payload.Body}
			finishSingle(cmd.Context(), "fnnas", started, result, rep.Payload)
			return nil
		},
	}
	return cmd
}

// fnnasConfigNotification 缺少 Cookie 时也推送一条通知，方便在面板外发现问题。
func fnnasConfigNotification(err error) model.NotificationPayload {
	body := err.Error()
	var ce *config.ConfigError
	if errors.As(err, &ce) {
		body = ce.Msg
	}
	return model.NotificationPayload{Title: "飞牛签到配置错误", Body: body}
}
