package commands

import (
	"github.com/spf13/cobra"

	"signin_engine/internal/engine"
	"signin_engine/internal/provider/cloud189"
)

func cloud189Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud189",
		Short: "天翼云盘每日签到 + 抽奖（ty_username / ty_password）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg
			accounts, err := cfg.RequireCloud189()
			if err != nil {
				return err
			}

			eng := engine.New(engine.Options{
				Provider:   cloud189.New(cfg.Cloud189, cfg.Proxy, appCtx.bus),
				Bus:        appCtx.bus,
				Limits:     cfg.Limits,
				Title:      cfg.Cloud189.Title,
				Dispatcher: appCtx.dispatcher,
				History:    appCtx.history(),
			})
			eng.Run(cmd.Context(), accounts)
			return nil
		},
	}
	return cmd
}
