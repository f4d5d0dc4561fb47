package debug

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"morrislecar/crossing"
	"morrislecar/internal/log"
	"morrislecar/model"
	"morrislecar/ode"
	"morrislecar/sim"
	"morrislecar/utils"
)

// Record 记录历史状态
type Record struct {
	ID        string           `json:"id,omitempty" msgpack:"id,omitempty"`
	Variant   string           `json:"variant" msgpack:"variant"`
	Params    utils.Values     `json:"params" msgpack:"params"`         // 参数列表
	Time      []float64        `json:"time" msgpack:"time"`             // 时间列（输出网格）
	Voltage   []float64        `json:"voltage" msgpack:"voltage"`       // 膜电位列
	Recovery  []float64        `json:"recovery" msgpack:"recovery"`     // 恢复变量列
	Crossings []crossing.Point `json:"crossings" msgpack:"crossings"`   // 临界点
	StepTime  []float64        `json:"step_time" msgpack:"step_time"`   // 积分步时间
	StepSize  []float64        `json:"step_size" msgpack:"step_size"`   // 积分步长
	StepMode  []string         `json:"step_mode" msgpack:"step_mode"`   // 积分方法
	StepState [][2]float64     `json:"step_state" msgpack:"step_state"` // 积分步状态 (V, w)
}

// Init 初始化
func (list *Record) Init(v model.Variant, p *model.Params) {
	list.Variant = v.String()
	list.Params = p.Values()
	list.StepTime = list.StepTime[:0]
	list.StepSize = list.StepSize[:0]
	list.StepMode = list.StepMode[:0]
	list.StepState = list.StepState[:0]
}

// Update 记录每个接受的积分步
func (list *Record) Update(clock ode.Clock, s model.State) {
	list.StepTime = append(list.StepTime, clock.Time())
	list.StepSize = append(list.StepSize, clock.TimeStep())
	list.StepMode = append(list.StepMode, clock.Mode().String())
	list.StepState = append(list.StepState, [2]float64{s.V, s.W})
}

// SetTrajectory 记录输出轨迹
func (list *Record) SetTrajectory(tr *sim.Trajectory) {
	list.Variant = tr.Variant.String()
	list.Params = tr.Params.Values()
	list.Time, list.Voltage, list.Recovery = tr.T, tr.V, tr.W
}

// SetCrossings 记录临界点
func (list *Record) SetCrossings(points []crossing.Point) { list.Crossings = points }

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

// RenderMsgpack 以 msgpack 格式输出
func (list *Record) RenderMsgpack(w io.Writer) error { return msgpack.NewEncoder(w).Encode(list) }

// Load 读取 msgpack 格式记录
func Load(r io.Reader) (*Record, error) {
	list := &Record{}
	if err := msgpack.NewDecoder(r).Decode(list); err != nil {
		return nil, err
	}
	return list, nil
}

func (list *Record) Error(err error) { log.Errorw("调试记录错误", "id", list.ID, "error", err) }
