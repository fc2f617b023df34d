package main

import (
	"signin_engine/cmd/signin/commands"
)

// 定时任务平台把非零退出码当作脚本故障，所以无论结果如何都以 0 退出；
// 失败已经体现在日志和通知里。
func main() {
	commands.Execute()
}
