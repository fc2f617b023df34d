package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"signin_engine/internal/config"
	"signin_engine/internal/model"
	"signin_engine/internal/report"
	"signin_engine/internal/store/sqlite"
)

func historyCmd() *cobra.Command {
	var (
		service string
		limit   int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看最近的运行记录（需要配置 SIGNIN_SQLITE_PATH）",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.store == nil {
				return &config.ConfigError{
					Msg:  "未配置运行历史库",
					Hint: "设置 storage.sqlitePath 或环境变量 SIGNIN_SQLITE_PATH",
				}
			}
			runs, err := appCtx.store.ListRuns(cmd.Context(), service, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "暂无运行记录")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "时间\t服务\t账号\t签到\t抽奖")
			for _, run := range runs {
				at := run.StartedAt.Format("2006-01-02 15:04:05")
				for _, r := range run.Reports {
					sign, lottery := report.DescribeSignIn(r.SignIn), report.DescribeLottery(r.Lottery)
					if run.Service != "cloud189" {
						sign, lottery = describeSingle(r.SignIn), "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", at, run.Service, r.Identifier, sign, lottery)
				}
				if verbose {
					fmt.Fprintf(tw, "\t\t%s\t\t\n", run.ID)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "only show runs of this service (cloud189|enshan|fnnas)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print run ids")
	cmd.AddCommand(historyShowCmd(), historyPruneCmd())
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "打印某次运行当时推送的通知内容",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.store == nil {
				return &config.ConfigError{
					Msg:  "未配置运行历史库",
					Hint: "设置 storage.sqlitePath 或环境变量 SIGNIN_SQLITE_PATH",
				}
			}
			run, err := appCtx.store.GetRun(cmd.Context(), args[0])
			if sqlite.IsNotFound(err) {
				return fmt.Errorf("运行记录 %s 不存在", args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s\n\n", run.ID, run.Service, run.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, run.Payload.Title)
			fmt.Fprintln(out, run.Payload.Body)
			return nil
		},
	}
}

// describeSingle 用于 Cookie 登录的站点，它们没有奖励空间和抽奖。
func describeSingle(r model.ActionResult) string {
	detail := strings.ReplaceAll(r.Detail, "\n", " ")
	switch r.Outcome {
	case model.OutcomeSuccess:
		return "✅ " + detail
	case model.OutcomeAlreadyDone:
		return "⏳ " + detail
	case model.OutcomeFailed:
		return "❌ " + detail
	default:
		return "⏭ 未执行"
	}
}

func historyPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "每个服务只保留最近的 N 次运行记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.store == nil {
				return &config.ConfigError{
					Msg:  "未配置运行历史库",
					Hint: "设置 storage.sqlitePath 或环境变量 SIGNIN_SQLITE_PATH",
				}
			}
			n, err := appCtx.store.PruneRuns(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 条运行记录\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 30, "runs to keep per service")
	return cmd
}
