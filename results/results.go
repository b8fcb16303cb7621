package results

import (
	"errors"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

var ErrNoResults = errors.New("no results")

type Results struct {
	dur  []time.Duration // Duration.
	amt  []float64       // Amount (e.g. GB written).
	unit string
	lat  []float64 // To avoid converting to float slices many times for the stats library.
	tpt  []float64 // To avoid converting to float slices many times for the stats library.
}

func NewResults(n int, unit string) *Results {
	return &Results{
		dur:  make([]time.Duration, 0, n),
		amt:  make([]float64, 0, n),
		unit: unit,
	}
}

// Add a data point, and return its index.
func (r *Results) Append(d time.Duration, amt float64) int {
	i := len(r.dur)
	r.dur = append(r.dur, d)
	r.amt = append(r.amt, amt)
	// Kill cache
	r.lat = nil
	r.tpt = nil
	return i
}

func (r *Results) Len() int {
	return len(r.dur)
}

func (r *Results) Unit() string {
	return r.unit
}

// Tpt returns the throughput of the ith data point.
func (r *Results) Tpt(i int) float64 {
	return r.amt[i] / r.dur[i].Seconds()
}

func (r *Results) Mean() (time.Duration, float64, error) {
	lat, tpt, err := r.toFloats()
	if err != nil {
		return 0, 0, err
	}
	l, err := stats.Mean(lat)
	if err != nil {
		return 0, 0, err
	}
	t, err := stats.Mean(tpt)
	if err != nil {
		return 0, 0, err
	}
	return time.Duration(int64(l)), t, nil
}

func (r *Results) StdDev() (time.Duration, float64, error) {
	lat, tpt, err := r.toFloats()
	if err != nil {
		return 0, 0, err
	}
	l, err := stats.StandardDeviation(lat)
	if err != nil {
		return 0, 0, err
	}
	t, err := stats.StandardDeviation(tpt)
	if err != nil {
		return 0, 0, err
	}
	return time.Duration(int64(l)), t, nil
}

// Calculate percentile. Note, this calculates the percentile separately for
// tpt & latency, and thus the results for each may correspond to different
// points.
func (r *Results) Percentile(p float64) (time.Duration, float64, error) {
	if p <= 0.0 || p > 100.0 {
		return 0, 0, fmt.Errorf("bad percentile, not in (0, 100.0]: %v", p)
	}
	lat, tpt, err := r.toFloats()
	if err != nil {
		return 0, 0, err
	}
	if len(lat) == 1 {
		return r.dur[0], tpt[0], nil
	}
	l, err := stats.Percentile(lat, p)
	if err != nil {
		return 0, 0, err
	}
	t, err := stats.Percentile(tpt, p)
	if err != nil {
		return 0, 0, err
	}
	return time.Duration(int64(l)), t, nil
}

// Min and max throughput.
func (r *Results) Range() (float64, float64, error) {
	_, tpt, err := r.toFloats()
	if err != nil {
		return 0, 0, err
	}
	lo, err := stats.Min(tpt)
	if err != nil {
		return 0, 0, err
	}
	hi, err := stats.Max(tpt)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// Convert time.Duration to float for stats library, and calculate tpt. Cache
// the results of conversion.
func (r *Results) toFloats() ([]float64, []float64, error) {
	if len(r.dur) == 0 {
		return nil, nil, ErrNoResults
	}
	if r.lat != nil && r.tpt != nil {
		return r.lat, r.tpt, nil
	}
	lat := make([]float64, len(r.dur))
	tpt := make([]float64, len(r.amt))
	for i := range r.dur {
		lat[i] = float64(r.dur[i])
		tpt[i] = r.Tpt(i)
	}
	r.lat = lat
	r.tpt = tpt
	return lat, tpt, nil
}

// Summary of latency and throughput.
func (r *Results) Summary() (string, string, error) {
	meanL, meanT, err := r.Mean()
	if err != nil {
		return "", "", err
	}
	stdL, stdT, err := r.StdDev()
	if err != nil {
		return "", "", err
	}
	ps := []float64{50, 75, 90, 99, 100}
	pl := make([]interface{}, 0, len(ps)+2)
	pt := make([]interface{}, 0, len(ps)+2)
	pl = append(pl, meanL, stdL)
	pt = append(pt, fmt.Sprintf("%.2f %s/s", meanT, r.unit), fmt.Sprintf("%.2f", stdT))
	for _, p := range ps {
		l, t, err := r.Percentile(p)
		if err != nil {
			return "", "", err
		}
		pl = append(pl, l)
		pt = append(pt, fmt.Sprintf("%.2f", t))
	}
	fstring := "Stats:\n Mean: %v\n Std: %v\n 50: %v\n 75: %v\n 90: %v\n 99: %v\n 100: %v"
	lsum := fmt.Sprintf("\n= Latency "+fstring, pl...)
	tsum := fmt.Sprintf("\n= Throughput "+fstring, pt...)
	return lsum, tsum, nil
}

func (r *Results) String() string {
	s := ""
	for i := 0; i < len(r.dur); i++ {
		s += fmt.Sprintf("&{ Lat %v Tpt %.2f %v/sec }\n", r.dur[i], r.Tpt(i), r.unit)
	}
	return s
}
