package notify

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/mail"
	"strings"

	"gopkg.in/gomail.v2"

	"signin_engine/internal/config"
)

type EmailNotifier struct {
	cfg  config.EmailConfig
	send func(d *gomail.Dialer, m *gomail.Message) error
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg: cfg,
		send: func(d *gomail.Dialer, m *gomail.Message) error {
			return d.DialAndSend(m)
		},
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Send(ctx context.Context, title, body string) error {
	if err := validateEmailConfig(n.cfg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	email := strings.TrimSpace(n.cfg.Email)
	host, port, useSSL, err := smtpConfigForEmail(email)
	if err != nil {
		return err
	}
	if n.cfg.SMTPHost != "" {
		host = n.cfg.SMTPHost
		if n.cfg.SMTPPort > 0 {
			port = n.cfg.SMTPPort
		}
		useSSL = port == 465
	}

	htmlBody, err := buildEmailBody(title, body)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(email, "签到助手"))
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", title)
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(host, port, email, strings.TrimSpace(n.cfg.AuthCode))
	d.SSL = useSSL
	return n.send(d, msg)
}

func validateEmailConfig(c config.EmailConfig) error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email")
	}
	if strings.TrimSpace(c.AuthCode) == "" {
		return errors.New("authCode is required")
	}
	return nil
}

func smtpConfigForEmail(email string) (host string, port int, useSSL bool, err error) {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", 0, false, errors.New("invalid email format")
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	switch {
	case domain == "qq.com" || strings.HasSuffix(domain, ".qq.com") || domain == "foxmail.com" || strings.HasSuffix(domain, ".foxmail.com"):
		return "smtp.qq.com", 465, true, nil
	case domain == "163.com" || strings.HasSuffix(domain, ".163.com") ||
		domain == "126.com" || strings.HasSuffix(domain, ".126.com") ||
		domain == "yeah.net" || strings.HasSuffix(domain, ".yeah.net"):
		return "smtp.163.com", 465, true, nil
	case domain == "189.cn":
		return "smtp.189.cn", 465, true, nil
	case domain == "gmail.com" || strings.HasSuffix(domain, ".gmail.com"):
		return "smtp.gmail.com", 587, false, nil
	case domain == "outlook.com" || strings.HasSuffix(domain, ".outlook.com") ||
		domain == "hotmail.com" || strings.HasSuffix(domain, ".hotmail.com") ||
		domain == "live.com" || strings.HasSuffix(domain, ".live.com"):
		return "smtp.office365.com", 587, false, nil
	case domain == "sina.com" || strings.HasSuffix(domain, ".sina.com"):
		return "smtp.sina.com", 465, true, nil
	case domain == "aliyun.com" || strings.HasSuffix(domain, ".aliyun.com"):
		return "smtp.aliyun.com", 465, true, nil
	default:
		return "smtp." + domain, 465, true, nil
	}
}

var emailHTMLTpl = template.Must(template.New("email").Parse(`
<!doctype html>
<html lang="zh-CN">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width" />
    <title>{{ .Title }}</title>
  </head>
  <body style="margin:0;padding:0;background:#f6f8fb;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,'PingFang SC','Microsoft YaHei',sans-serif;">
    <div style="max-width:720px;margin:0 auto;padding:24px;">
      <div style="background:#ffffff;border:1px solid #e6e8ef;border-radius:14px;overflow:hidden;">
        <div style="padding:18px 22px;background:linear-gradient(135deg,#0ea5e9,#6366f1);color:#ffffff;">
          <div style="font-size:16px;font-weight:700;">{{ .Title }}</div>
          <div style="margin-top:6px;font-size:12px;opacity:.95;">签到助手通知</div>
        </div>
        <div style="padding:22px;">
          {{ range .Lines }}<div style="font-size:13px;line-height:1.8;color:#111827;">{{ . }}</div>
          {{ end }}
          <div style="margin-top:14px;color:#9ca3af;font-size:12px;">此邮件由系统自动发送</div>
        </div>
      </div>
    </div>
  </body>
</html>
`))

func buildEmailBody(title, body string) (string, error) {
	data := struct {
		Title string
		Lines []string
	}{
		Title: title,
		Lines: strings.Split(strings.TrimRight(body, "\n"), "\n"),
	}
	var buf bytes.Buffer
	if err := emailHTMLTpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
