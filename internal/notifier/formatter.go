package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockLens/internal/recorder"
)

// FormatBatchReport formats a finished batch run into a Telegram message.
func FormatBatchReport(run *recorder.BatchRun) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockLens 批量统计</b> | %s\n\n", run.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("区间: %s ~ %s\n", run.RangeStart.Format("2006-01-02"), run.RangeEnd.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("初始投资: ¥%s\n", run.Investment.StringFixed(2)))

	succeeded := run.Succeeded()
	b.WriteString(fmt.Sprintf("成功: %d | 失败: %d", succeeded, len(run.Results)-succeeded))
	if run.Warnings > 0 {
		b.WriteString(fmt.Sprintf(" | 跳过配置行: %d", run.Warnings))
	}
	b.WriteString("\n\n")

	if succeeded > 0 {
		b.WriteString("📈 <b>收益明细:</b>\n")
		for _, r := range run.Results {
			if r.Status != recorder.StatusOK {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s%s: %+.2f%% → ¥%s (回撤 %.2f%%)\n",
				r.Symbol, comment(r.Comment), r.TotalReturn*100, r.EndingValue.StringFixed(2), r.MaxDrawdown*100))
		}
	}

	if succeeded < len(run.Results) {
		b.WriteString("\n⚠️ <b>失败:</b>\n")
		for _, r := range run.Results {
			if r.Status == recorder.StatusOK {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s%s: %s\n", r.Symbol, comment(r.Comment), html.EscapeString(r.Reason)))
		}
	}
	return b.String()
}

func comment(c string) string {
	if c == "" {
		return ""
	}
	return "(" + html.EscapeString(c) + ")"
}
