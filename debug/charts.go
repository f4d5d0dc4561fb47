package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// MaxPoints 每条曲线最多绘制的点数，超过时等间隔抽样
var MaxPoints = 2000

// Charts 曲线绘制
type Charts struct {
	Record
}

func lineChart(title, subtitle, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "t",
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  yName,
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	return line
}

// stride 抽样间隔
func stride(n int) int {
	if MaxPoints <= 0 || n <= MaxPoints {
		return 1
	}
	return (n + MaxPoints - 1) / MaxPoints
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	if len(c.Time) == 0 {
		return fmt.Errorf("没有可绘制的轨迹")
	}
	subtitle := fmt.Sprintf("%s %v", c.Variant, c.Params)
	lineV := lineChart("膜电位曲线", subtitle, "V")
	lineW := lineChart("恢复变量曲线", subtitle, "w")
	phase := charts.NewScatter()
	phase.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "相平面",
			Subtitle: "V-w 轨迹与临界点",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:  "V",
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "w",
			Scale: opts.Bool(true),
		}),
	)
	lineH := lineChart("积分步长", "接受步的步长", "h")
	// 处理数据
	{
		step := stride(len(c.Time))
		n := (len(c.Time) + step - 1) / step
		xs := make([]float64, 0, n)
		itemsV := make([]opts.LineData, 0, n)
		itemsW := make([]opts.LineData, 0, n)
		itemsP := make([]opts.ScatterData, 0, n)
		for i := 0; i < len(c.Time); i += step {
			xs = append(xs, c.Time[i])
			itemsV = append(itemsV, opts.LineData{Value: c.Voltage[i]})
			itemsW = append(itemsW, opts.LineData{Value: c.Recovery[i]})
			itemsP = append(itemsP, opts.ScatterData{Value: []float64{c.Voltage[i], c.Recovery[i]}, SymbolSize: 2})
		}
		lineV.SetXAxis(xs).AddSeries("V", itemsV)
		lineW.SetXAxis(xs).AddSeries("w", itemsW)
		phase.AddSeries("轨迹", itemsP)
		if len(c.Crossings) > 0 {
			itemsC := make([]opts.ScatterData, len(c.Crossings))
			for i, p := range c.Crossings {
				itemsC[i] = opts.ScatterData{Name: fmt.Sprintf("t=%g", p.T), Value: []float64{p.V, p.W}, SymbolSize: 8}
			}
			phase.AddSeries("临界点", itemsC)
		}
	}
	// 步长信息
	if len(c.StepTime) > 0 {
		step := stride(len(c.StepTime))
		xs := make([]float64, 0, len(c.StepTime)/step+1)
		items := make([]opts.LineData, 0, len(c.StepTime)/step+1)
		for i := 0; i < len(c.StepTime); i += step {
			xs = append(xs, c.StepTime[i])
			items = append(items, opts.LineData{Value: c.StepSize[i], Name: c.StepMode[i]})
		}
		lineH.SetXAxis(xs).AddSeries("h", items)
	}
	// 构建界面
	page := components.NewPage()
	page.AddCharts(
		lineV,
		phase,
		lineW,
	)
	if len(c.StepTime) > 0 {
		page.AddCharts(lineH)
	}
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		c.Error(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
