package report

import (
	"strings"

	"signin_engine/internal/model"
)

const blockSeparator = "--------------------"

// Render 按处理顺序把每个账号渲染成一段文本，输出是确定的。
func Render(title string, reports []model.AccountReport) model.NotificationPayload {
	var sb strings.Builder
	for _, r := range reports {
		sb.WriteString("账号: " + r.Identifier + "\n")
		sb.WriteString("签到结果: " + DescribeSignIn(r.SignIn) + "\n")
		sb.WriteString("每日抽奖: " + DescribeLottery(r.Lottery) + "\n")
		sb.WriteString(blockSeparator + "\n")
	}
	return model.NotificationPayload{Title: title, Body: sb.String()}
}

func DescribeSignIn(r model.ActionResult) string {
	switch r.Outcome {
	case model.OutcomeSuccess:
		return "✅ +" + orDefault(r.Detail, "0") + "M"
	case model.OutcomeAlreadyDone:
		return "⏳ 已签到+" + orDefault(r.Detail, "0") + "M"
	case model.OutcomeFailed:
		return "❌ " + orDefault(r.Detail, "签到失败")
	default:
		return "⏭ 未执行"
	}
}

func DescribeLottery(r model.ActionResult) string {
	switch r.Outcome {
	case model.OutcomeSuccess, model.OutcomeAlreadyDone:
		return "🎁 " + orDefault(r.Detail, "未知奖品")
	case model.OutcomeFailed:
		return "❌ " + orDefault(r.Detail, "抽奖失败")
	default:
		return "⏭ 未执行"
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
