package main

import (
	"fmt"
	"os"
	"path/filepath"

	"morrislecar"
	"morrislecar/crossing"
	"morrislecar/debug"
	"morrislecar/internal/log"
	"morrislecar/model"
	"morrislecar/sim"
)

func main() {
	if err := log.Init(false); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	session := morrislecar.NewSession()
	for _, v := range []model.Variant{model.Simple, model.Extended} {
		results, err := session.Sweep(v, sim.Input{}, model.SlidersOf(v).IExt.Values(), true)
		if err != nil {
			log.Fatalf("%s 扫描失败: %s", v, err)
		}
		for _, r := range results {
			log.Infow("临界点",
				"variant", v.String(),
				"I_ext", r.Trajectory.Params.IExt,
				"t", crossing.Times(r.Reported()),
			)
		}
	}

	// 最近一次结果的调试页面，带积分步信息
	last, _ := session.Snapshot.Last()
	charts := &debug.Charts{}
	charts.ID = last.ID.String()
	d := sim.NewDriver()
	d.Recorder = &charts.Record
	tr, err := d.Simulate(last.Trajectory.Variant, sim.Current(last.Trajectory.Params.IExt))
	if err != nil {
		log.Fatalf("调试仿真失败: %s", err)
	}
	charts.SetTrajectory(tr)
	charts.SetCrossings(last.Crossings)
	path := filepath.Join(session.FigureDir, fmt.Sprintf("%s_debug.html", session.Basename))
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("创建调试页面失败: %s", err)
	}
	defer f.Close()
	if err := charts.Render(f); err != nil {
		log.Fatalf("输出调试页面失败: %s", err)
	}
	log.Infof("调试页面已保存: %s", path)
}
