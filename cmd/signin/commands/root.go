package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"signin_engine/internal/config"
	"signin_engine/internal/engine"
	"signin_engine/internal/logbus"
	"signin_engine/internal/notify"
	"signin_engine/internal/store/sqlite"
)

var (
	configPath string
	appCtx     *app
)

// app 是一次命令执行期间共享的依赖。
type app struct {
	cfg        config.Config
	bus        *logbus.Bus
	store      *sqlite.Store
	dispatcher *notify.Dispatcher
}

// history 在未配置历史库时返回 nil 接口，避免 typed nil。
func (a *app) history() engine.History {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	a.bus.Close()
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "signin",
		Short:         "Daily sign-in runner for 天翼云盘 / 恩山 / 飞牛论坛",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			bus := logbus.New(cfg.Log.BufferSize, logbus.NewLogger(cfg.Log))

			a := &app{cfg: cfg, bus: bus}
			if cfg.Storage.SQLitePath != "" {
				st, err := sqlite.Open(cmd.Context(), cfg.Storage.SQLitePath)
				if err != nil {
					bus.Log("warn", "打开历史库失败，本次不记录历史", map[string]any{"error": err.Error()})
				} else {
					a.store = st
				}
			}
			a.dispatcher = notify.NewDispatcher(notify.FromConfig(cfg.Notify, bus), bus, cmd.OutOrStdout())
			appCtx = a
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "path to config.yaml (missing file means defaults + environment)")

	root.AddCommand(cloud189Cmd(), enshanCmd(), fnnasCmd(), historyCmd())
	err := root.ExecuteContext(ctx)
	if appCtx != nil {
		appCtx.close()
	}
	if err != nil {
		reportError(root, err)
	}
}

// reportError 只打印错误。配置错误在任何网络请求之前出现，提示用户如何修正。
func reportError(root *cobra.Command, err error) {
	var ce *config.ConfigError
	if errors.As(err, &ce) {
		fmt.Fprintln(root.ErrOrStderr(), "配置错误: "+ce.Error())
		return
	}
	fmt.Fprintln(root.ErrOrStderr(), "执行失败: "+err.Error())
}
