//go:build analysis

// Command analysis samples key vectors and signature responses and renders
// coefficient histograms as a go-echarts HTML page, plus a JSON stats dump.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"csifish"
	"csifish/classgroup"
)

type summaryStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis_excess"`
}

// ------------------------------ stats utilities ------------------------------

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[n-1]
	median := quantileSorted(cp, 0.5)
	q1 := quantileSorted(cp, 0.25)
	q3 := quantileSorted(cp, 0.75)
	iqr := q3 - q1
	var m float64
	for _, v := range x {
		m += v
	}
	m /= float64(n)
	var m2, m3, m4 float64
	for _, v := range x {
		d := v - m
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	varVar := m2 / float64(n-1)
	std := math.Sqrt(varVar)
	var skew, kurtEx float64
	if std > 0 {
		m2n := m2 / float64(n)
		m3n := m3 / float64(n)
		m4n := m4 / float64(n)
		skew = m3n / math.Pow(m2n, 1.5)
		kurtEx = m4n/m2n/m2n - 3.0
	}
	return summaryStats{Count: n, Mean: m, Std: std, Min: minv, Q1: q1, Median: median, Q3: q3, Max: maxv, IQR: iqr, Skewness: skew, Kurtosis: kurtEx}
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	w := pos - float64(l)
	return sorted[l]*(1-w) + sorted[r]*w
}

func freedmanDiaconisBins(x []float64) int {
	n := len(x)
	if n < 2 {
		return 1
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	iqr := quantileSorted(cp, 0.75) - quantileSorted(cp, 0.25)
	if iqr == 0 {
		if n < 200 {
			return n
		}
		return 200
	}
	bw := 2 * iqr * math.Pow(float64(n), -1.0/3.0)
	if bw <= 0 {
		if n < 200 {
			return n
		}
		return 200
	}
	r := cp[n-1] - cp[0]
	k := int(math.Ceil(r / bw))
	if k < 20 {
		k = 20
	}
	if k > 2000 {
		k = 2000
	}
	return k
}

func computeHistogram(values []float64, nbins int) (edges []float64, counts []int) {
	if len(values) == 0 {
		return []float64{0, 1}, []int{0}
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[len(cp)-1]
	if nbins < 1 {
		nbins = 1
	}
	width := (maxv - minv) / float64(nbins)
	if width <= 0 {
		width = 1
	}
	edges = make([]float64, nbins+1)
	for i := 0; i <= nbins; i++ {
		edges[i] = minv + float64(i)*width
	}
	counts = make([]int, nbins)
	for _, v := range values {
		idx := int(math.Floor((v - minv) / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}
	return
}

// ------------------------- plotting: go-echarts HTML -------------------------

func toBarItems(vals []int) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func newHistogramChart(title string, values []float64, stats summaryStats) *charts.Bar {
	nbins := freedmanDiaconisBins(values)
	edges, counts := computeHistogram(values, nbins)
	xLabels := make([]string, nbins)
	for i := 0; i < nbins; i++ {
		center := 0.5 * (edges[i] + edges[i+1])
		xLabels[i] = fmt.Sprintf("%.2f", center)
	}
	bar := charts.NewBar()
	subtitle := fmt.Sprintf("n=%d, mean=%.3f, std=%.3f, median=%.3f, IQR=%.3f", stats.Count, stats.Mean, stats.Std, stats.Median, stats.IQR)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("count", toBarItems(counts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func appendVector(vals []float64, v *classgroup.Vector) []float64 {
	for _, x := range v {
		vals = append(vals, float64(x))
	}
	return vals
}

// ------------------------------- main routine -------------------------------

func main() {
	vectorRuns := flag.Int("vectors", 2000, "number of lattice-reduced key vectors to sample")
	signRuns := flag.Int("signs", 0, "number of full signatures to collect responses from (slow)")
	outDir := flag.String("out", "Measure_Reports", "output directory for reports")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	// Reduced key vectors: coefficient distribution plus L1/Linf per vector.
	var keyCoeffs, keyL1, keyLinf []float64
	for i := 0; i < *vectorRuns; i++ {
		var s classgroup.Scalar
		if _, err := s.Random(rand.Reader); err != nil {
			log.Fatalf("sample scalar: %v", err)
		}
		v, err := classgroup.Reduce(&s)
		if err != nil {
			log.Fatalf("reduce scalar: %v", err)
		}
		keyCoeffs = appendVector(keyCoeffs, &v)
		keyL1 = append(keyL1, float64(v.L1()))
		keyLinf = append(keyLinf, float64(v.InfNorm()))
	}

	// Signature responses: the verifier-visible vectors, differences of two
	// reduced vectors.
	var respCoeffs, respL1, sigBytes []float64
	if *signRuns > 0 {
		params := csifish.ParamSetCompact
		sk, err := csifish.GenerateKey(params)
		if err != nil {
			log.Fatalf("keygen: %v", err)
		}
		for i := 0; i < *signRuns; i++ {
			log.Printf("[analysis] signature %d/%d", i+1, *signRuns)
			sig, err := sk.Sign([]byte(fmt.Sprintf("analysis-%d", i)))
			if err != nil {
				log.Fatalf("sign: %v", err)
			}
			for t := range sig.Responses {
				respCoeffs = appendVector(respCoeffs, &sig.Responses[t])
				respL1 = append(respL1, float64(sig.Responses[t].L1()))
			}
			sigBytes = append(sigBytes, float64(len(sig.Bytes())))
		}
	}

	outStats := map[string]summaryStats{
		"key_coeffs": computeStats(keyCoeffs),
		"key_l1":     computeStats(keyL1),
		"key_linf":   computeStats(keyLinf),
	}
	if len(respCoeffs) > 0 {
		outStats["resp_coeffs"] = computeStats(respCoeffs)
		outStats["resp_l1"] = computeStats(respL1)
		outStats["sig_bytes"] = computeStats(sigBytes)
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("exponent_stats_%s.json", ts))
	if err := saveJSON(jsonPath, outStats); err != nil {
		log.Printf("warn: save stats: %v", err)
	}

	page := components.NewPage()
	add := func(name string, vals []float64) {
		if len(vals) == 0 {
			return
		}
		st := computeStats(vals)
		page.AddCharts(newHistogramChart(name, vals, st))
	}
	add("key vector coefficients", keyCoeffs)
	add("key vector L1", keyL1)
	add("key vector Linf", keyLinf)
	add("response coefficients", respCoeffs)
	add("response L1", respL1)
	add("signature size (bytes)", sigBytes)

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("exponent_histograms_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Histogram page:", htmlPath)
	fmt.Println("Stats JSON:", jsonPath)
}
