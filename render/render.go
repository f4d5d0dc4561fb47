// Package render 将仿真轨迹绘制为三联图 PNG（V-t、V-w 相平面、w-t）
package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"morrislecar/sim"
)

// DefaultDir 默认输出目录
const DefaultDir = "figures"

// DefaultBasename 默认文件名前缀
const DefaultBasename = "morris_lecar"

// 图像尺寸
var (
	Width  = 15 * vg.Inch
	Height = 5 * vg.Inch
)

// FileName 输出文件名 <basename>_I_ext_<I_ext>.png
func FileName(basename string, iExt float64) string {
	return fmt.Sprintf("%s_I_ext_%s.png", basename, strconv.FormatFloat(iExt, 'g', -1, 64))
}

// Panels 生成三幅子图
func Panels(tr *sim.Trajectory) ([]*plot.Plot, error) {
	if tr == nil || tr.Len() == 0 {
		return nil, fmt.Errorf("轨迹为空")
	}
	title := fmt.Sprintf("%s, I_ext=%g", tr.Variant, tr.Params.IExt)
	vt, err := linePlot(title, "t", "V", tr.T, tr.V, color.RGBA{R: 31, G: 119, B: 180, A: 255})
	if err != nil {
		return nil, err
	}
	phase, err := linePlot("Phase plane", "V", "w", tr.V, tr.W, color.RGBA{R: 214, G: 39, B: 40, A: 255})
	if err != nil {
		return nil, err
	}
	wt, err := linePlot("Recovery", "t", "w", tr.T, tr.W, color.RGBA{R: 44, G: 160, B: 44, A: 255})
	if err != nil {
		return nil, err
	}
	return []*plot.Plot{vt, phase, wt}, nil
}

func linePlot(title, xLabel, yLabel string, xs, ys []float64, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	return p, nil
}

// WritePNG 将三幅子图横向排列写出
func WritePNG(w io.Writer, tr *sim.Trajectory) error {
	plots, err := Panels(tr)
	if err != nil {
		return err
	}
	img := vgimg.New(Width, Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// SavePNG 写出到 dir/FileName(basename, I_ext)，目录不存在时创建，返回文件路径
func SavePNG(dir, basename string, tr *sim.Trajectory) (string, error) {
	if tr == nil {
		return "", fmt.Errorf("轨迹为空")
	}
	if dir == "" {
		dir = DefaultDir
	}
	if basename == "" {
		basename = DefaultBasename
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(dir, FileName(basename, tr.Params.IExt))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WritePNG(f, tr); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
