// Package report renders a crawl snapshot plus its analysis into JSON,
// plain-text and HTML summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"text/template"
	"time"

	"github.com/FranksOps/hotwatch/internal/analysis"
	"github.com/FranksOps/hotwatch/internal/model"
)

// topListLimit caps the ranked list shown in reports.
const topListLimit = 20

// Summary bundles everything a report template needs.
type Summary struct {
	Source      string
	CrawlTime   time.Time
	GeneratedAt time.Time
	Total       int
	TopItems    []model.Item
	Stats       *analysis.Stats
	Trend       *analysis.TrendReport
}

// NewSummary builds a report summary from a snapshot and its analysis.
// stats and trend may be nil when unavailable.
func NewSummary(result *model.Result, stats *analysis.Stats, trend *analysis.TrendReport) Summary {
	s := Summary{
		GeneratedAt: time.Now(),
		Stats:       stats,
		Trend:       trend,
	}
	if result != nil {
		s.Source = result.Source
		s.CrawlTime = result.CrawlTime
		s.Total = result.Total
		s.TopItems = result.TopN(topListLimit)
	}
	return s
}

// SearchURL builds the search page link for a trending term.
func SearchURL(word string) string {
	return "https://www.xiaohongshu.com/search_result?keyword=" + url.QueryEscape(word)
}

var templateFuncs = template.FuncMap{
	"searchURL": SearchURL,
	"ts":        func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `热搜快照报告
------------
Source:       {{.Source}}
Crawled:      {{ts .CrawlTime}}
Generated:    {{ts .GeneratedAt}}
Total Items:  {{.Total}}

Top {{len .TopItems}}:
{{- range .TopItems}}
  {{.Rank}}. {{.Word}}{{if gt .Heat 0}} (热度 {{.Heat}}){{end}}{{if .Category}} [{{.Category}}]{{end}}
{{- else}}
  None
{{- end}}
{{- if .Stats}}

Heat:
  Avg:    {{printf "%.0f" .Stats.Heat.Avg}}
  Max:    {{.Stats.Heat.Max}}
  Min:    {{.Stats.Heat.Min}}
  Median: {{printf "%.0f" .Stats.Heat.Median}}

Categories:
{{- range .Stats.Categories}}
  {{.Word}}: {{.Count}}
{{- else}}
  None
{{- end}}

Avg Word Length: {{printf "%.1f" .Stats.AvgWordLength}}
{{- end}}
{{- if .Trend}}

Trend:
{{- if .Trend.NoPreviousData}}
  No previous data
{{- else}}
  New:     {{.Trend.NewItems}}{{if .Trend.NewWords}} ({{range $i, $w := .Trend.NewWords}}{{if $i}}, {{end}}{{$w}}{{end}}){{end}}
  Removed: {{.Trend.RemovedItems}}{{if .Trend.RemovedWords}} ({{range $i, $w := .Trend.RemovedWords}}{{if $i}}, {{end}}{{$w}}{{end}}){{end}}
{{- range .Trend.RankChanges}}
  {{.Word}}: {{.PreviousRank}} -> {{.CurrentRank}} ({{if gt .Change 0}}+{{end}}{{.Change}})
{{- end}}
{{- end}}
{{- end}}
`

	t, err := template.New("textReport").Funcs(templateFuncs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

// WriteHTML writes an HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<title>小红书热搜分析报告 - {{.CrawlTime.Format "2006年01月02日"}}</title>
<style>
  body { font-family: 'Segoe UI', 'Microsoft YaHei', Arial, sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ff6b6b; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; text-align: center; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .hot-item { padding: 12px; margin: 8px 0; background: #fafafa; border-left: 4px solid #ff6b6b; border-radius: 4px; }
  .rank { display: inline-block; background: #ff6b6b; color: white; width: 28px; height: 28px; border-radius: 50%; text-align: center; line-height: 28px; font-weight: bold; margin-right: 12px; }
  .heat { color: #e17055; font-weight: bold; margin-left: 10px; }
  .category-tag { display: inline-block; background: #74b9ff; color: white; padding: 2px 10px; border-radius: 12px; font-size: 0.8em; margin-left: 8px; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>小红书热搜分析报告</h1>
  <p><strong>Source:</strong> {{.Source}} | <strong>Crawled:</strong> {{ts .CrawlTime}}</p>

  <div class="stat-card">
    <div>热搜词条总数</div>
    <div class="stat-val">{{.Total}}</div>
  </div>
{{- if .Stats}}
  <div class="stat-card">
    <div>最高热度</div>
    <div class="stat-val">{{.Stats.Heat.Max}}</div>
  </div>
  <div class="stat-card">
    <div>平均热度</div>
    <div class="stat-val">{{printf "%.0f" .Stats.Heat.Avg}}</div>
  </div>
  <div class="stat-card">
    <div>分类数量</div>
    <div class="stat-val">{{len .Stats.Categories}}</div>
  </div>
{{- end}}

  <h3>今日热搜榜 TOP {{len .TopItems}}</h3>
  {{- range .TopItems}}
  <div class="hot-item">
    <span class="rank">{{.Rank}}</span>
    <a href="{{searchURL .Word}}">{{.Word}}</a>
    {{- if .Category}}<span class="category-tag">{{.Category}}</span>{{end}}
    {{- if gt .Heat 0}}<span class="heat">热度 {{.Heat}}</span>{{end}}
  </div>
  {{- else}}
  <p>None</p>
  {{- end}}

{{- if .Stats}}
  <h3>热度统计</h3>
  <table>
    <tr><th>平均热度</th><td>{{printf "%.0f" .Stats.Heat.Avg}}</td></tr>
    <tr><th>最高热度</th><td>{{.Stats.Heat.Max}}</td></tr>
    <tr><th>最低热度</th><td>{{.Stats.Heat.Min}}</td></tr>
    <tr><th>中位数热度</th><td>{{printf "%.0f" .Stats.Heat.Median}}</td></tr>
  </table>

  <h3>分类分布</h3>
  <table>
    <tr><th>分类</th><th>词条数</th></tr>
    {{- range .Stats.Categories}}
    <tr><td>{{.Word}}</td><td>{{.Count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <p>平均词条长度: {{printf "%.1f" .Stats.AvgWordLength}} 个字符</p>
{{- end}}

{{- if and .Trend (not .Trend.NoPreviousData)}}
  <h3>趋势变化</h3>
  <p>新增 {{.Trend.NewItems}} 条, 移除 {{.Trend.RemovedItems}} 条</p>
  <table>
    <tr><th>词条</th><th>上期排名</th><th>本期排名</th><th>变化</th></tr>
    {{- range .Trend.RankChanges}}
    <tr><td>{{.Word}}</td><td>{{.PreviousRank}}</td><td>{{.CurrentRank}}</td><td>{{if gt .Change 0}}+{{end}}{{.Change}}</td></tr>
    {{- else}}
    <tr><td colspan="4">None</td></tr>
    {{- end}}
  </table>
{{- end}}

  <p style="margin-top: 40px; color: #888;">报告生成时间: {{ts .GeneratedAt}}</p>
</body>
</html>
`
	t, err := template.New("htmlReport").Funcs(templateFuncs).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}
