package debug

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"morrislecar/crossing"
	"morrislecar/model"
	"morrislecar/sim"
)

func simulate(t *testing.T, rec *Record) *sim.Trajectory {
	t.Helper()
	d := sim.NewDriver()
	d.Recorder = rec
	tr, err := d.Simulate(model.Simple, sim.Current(0.1))
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	rec.SetTrajectory(tr)
	points, err := crossing.Find(tr.V, tr.W, tr.T)
	if err != nil {
		t.Fatalf("提取临界点失败: %s", err)
	}
	rec.SetCrossings(points)
	return tr
}

func TestRecord(t *testing.T) {
	rec := &Record{ID: "test"}
	tr := simulate(t, rec)
	if len(rec.StepTime) != tr.Stats.Steps || len(rec.StepSize) != len(rec.StepTime) || len(rec.StepMode) != len(rec.StepTime) {
		t.Fatalf("积分步记录不完整: %d/%d", len(rec.StepTime), tr.Stats.Steps)
	}
	if rec.Variant != "simple" || len(rec.Params) != len(model.ParamNames) {
		t.Errorf("参数记录不正确: %s %v", rec.Variant, rec.Params)
	}

	var buf bytes.Buffer
	if err := rec.Render(&buf); err != nil {
		t.Fatalf("JSON 输出失败: %s", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON 无效: %s", err)
	}
	if ts, ok := decoded["time"].([]any); !ok || len(ts) != tr.Len() {
		t.Errorf("JSON 时间列不正确")
	}

	buf.Reset()
	if err := rec.RenderMsgpack(&buf); err != nil {
		t.Fatalf("msgpack 输出失败: %s", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("msgpack 读取失败: %s", err)
	}
	if got.ID != "test" || len(got.Voltage) != tr.Len() || len(got.Crossings) != len(rec.Crossings) {
		t.Errorf("msgpack 记录不一致: id=%s V=%d crossings=%d", got.ID, len(got.Voltage), len(got.Crossings))
	}
	if got.Voltage[tr.Len()-1] != tr.V[tr.Len()-1] {
		t.Errorf("msgpack 数值不一致")
	}
}

func TestCharts(t *testing.T) {
	c := &Charts{}
	simulate(t, &c.Record)
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		t.Fatalf("绘图失败: %s", err)
	}
	if html := buf.String(); !strings.Contains(html, "echarts.min.js") {
		t.Errorf("页面缺少 echarts 脚本")
	}

	rw := httptest.NewRecorder()
	c.Handler(rw, httptest.NewRequest("GET", "/", nil))
	if rw.Code != 200 || rw.Body.Len() == 0 {
		t.Errorf("页面发布失败: %d", rw.Code)
	}

	empty := &Charts{}
	if err := empty.Render(&buf); err == nil {
		t.Errorf("空记录应返回错误")
	}
}

func TestStride(t *testing.T) {
	if got := stride(10); got != 1 {
		t.Errorf("少量点不应抽样: %d", got)
	}
	if got := stride(10000); got != 5 {
		t.Errorf("抽样间隔不正确: %d", got)
	}
}
