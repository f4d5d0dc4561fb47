package morrislecar

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"morrislecar/crossing"
	"morrislecar/internal/log"
	"morrislecar/model"
	"morrislecar/render"
	"morrislecar/sim"
)

// ErrNoResult 还没有可保存的计算结果
var ErrNoResult = errors.New("没有可保存的计算结果")

// Result 一次计算的结果
type Result struct {
	ID         uuid.UUID        // 计算编号
	Trajectory *sim.Trajectory  // 轨迹
	Crossings  []crossing.Point // 全部 V-w 变号点
}

// Reported 去掉边界点后的临界点
func (r *Result) Reported() []crossing.Point { return crossing.DropBoundary(r.Crossings) }

// Snapshot 最近一次成功的计算结果（单槽缓存）
type Snapshot struct {
	mu   sync.RWMutex
	last *Result
}

// Store 替换缓存
func (s *Snapshot) Store(r *Result) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

// Last 读取缓存
func (s *Snapshot) Last() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

// Clear 清空缓存
func (s *Snapshot) Clear() { s.Store(nil) }

// Session 交互会话：计算、缓存最近结果并按需保存图像
type Session struct {
	Driver    *sim.Driver // 仿真驱动
	Snapshot  Snapshot    // 最近结果
	FigureDir string      // 图像目录
	Basename  string      // 图像文件名前缀

	unitsOnce sync.Once
}

// NewSession 创建会话
func NewSession() *Session {
	return &Session{
		Driver:    sim.NewDriver(),
		FigureDir: render.DefaultDir,
		Basename:  render.DefaultBasename,
	}
}

// Run 仿真并提取临界点，成功后替换缓存；失败时缓存保持不变
func (s *Session) Run(v model.Variant, in sim.Input) (*Result, error) {
	tr, err := s.Driver.Simulate(v, in)
	if err != nil {
		log.Errorw("仿真失败", "variant", v.String(), "I_ext", in.IExt, "error", err)
		return nil, err
	}
	points, err := crossing.Find(tr.V, tr.W, tr.T)
	if err != nil {
		return nil, err
	}
	if v == model.Extended {
		s.unitsOnce.Do(func() {
			log.Warnw("扩展变体中 V(mV) 与 w(无量纲) 单位不同，V-w 临界点仅为数值比较")
		})
	}
	r := &Result{ID: uuid.New(), Trajectory: tr, Crossings: points}
	s.Snapshot.Store(r)
	log.Infow("计算完成",
		"id", r.ID.String(),
		"variant", v.String(),
		"I_ext", tr.Params.IExt,
		"g_Ca", tr.Params.GCa,
		"g_K", tr.Params.GK,
		"crossings", len(points),
		"steps", tr.Stats.Steps,
	)
	return r, nil
}

// Save 将最近结果保存为 PNG，返回文件路径
func (s *Session) Save() (string, error) {
	r, ok := s.Snapshot.Last()
	if !ok {
		return "", ErrNoResult
	}
	path, err := render.SavePNG(s.FigureDir, s.Basename, r.Trajectory)
	if err != nil {
		return "", fmt.Errorf("保存计算结果 %s 失败: %w", r.ID, err)
	}
	log.Infow("图像已保存", "id", r.ID.String(), "path", path)
	return path, nil
}

// Sweep 依次计算 I_ext 各取值，save 为真时逐个保存图像
// 遇到错误立即返回已完成的结果。
func (s *Session) Sweep(v model.Variant, in sim.Input, values []float64, save bool) ([]*Result, error) {
	out := make([]*Result, 0, len(values))
	for _, iExt := range values {
		in.IExt = iExt
		r, err := s.Run(v, in)
		if err != nil {
			return out, err
		}
		if save {
			if _, err := s.Save(); err != nil {
				return out, err
			}
		}
		out = append(out, r)
	}
	return out, nil
}
