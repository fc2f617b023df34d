package commands

import (
	"time"

	"github.com/spf13/cobra"

	"signin_engine/internal/model"
	"signin_engine/internal/provider/enshan"
)

func enshanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enshan",
		Short: "恩山论坛签到并查询积分（enshanck）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg
			if err := cfg.RequireEnshan(); err != nil {
				return err
			}
			started := time.Now()
			appCtx.bus.Log("info", "开始恩山签到任务", nil)

			credit, err := enshan.New(cfg.Enshan, cfg.Proxy, appCtx.bus).FetchCredit(cmd.Context())
			if err != nil {
				return err
			}
			payload := enshan.Notification(credit)

			result := model.Failed(model.ActionSignIn, payload.Body)
			if credit.Found {
				result = model.Succeeded(model.ActionSignIn, payload.Body)
				appCtx.bus.Log("info", "获取信息成功", map[string]any{"coin": credit.Coin, "point": credit.Point})
			} else {
				appCtx.bus.Log("error", payload.Body, nil)
			}
			finishSingle(cmd.Context(), "enshan", started, result, payload)
			return nil
		},
	}
	return cmd
}
