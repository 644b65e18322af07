// Command create_measurements writes a synthetic measurements file with one
// "<station>;<temperature>" record per line.
package main

import (
	"bufio"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"xpug.it/1brc/internal/report"
)

//go:embed stations.txt
var defaultStations string

const (
	maxTenths   = 999
	stddev      = 10.0
	logInterval = 50_000_000
)

// Station is a weather station and the mean its samples are drawn around.
type Station struct {
	Name string
	Mean float64
}

// Random is the subset of *rand.Rand the generator draws from.
type Random interface {
	NormFloat64() float64
	Intn(n int) int
}

func checkArgs(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("incorrect number of arguments, usage: create_measurements [-o file] <rows>")
	}
	rows, err := strconv.Atoi(args[0])
	if err != nil || rows <= 0 {
		return 0, fmt.Errorf("row count must be a positive integer, got %q", args[0])
	}
	return rows, nil
}

// loadStations reads "name;mean" lines, skipping blank lines and lines
// starting with '#'.
func loadStations(r io.Reader) ([]Station, error) {
	var stations []Station
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, mean, ok := strings.Cut(text, ";")
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: want name;mean, got %q", line, text)
		}
		m, err := strconv.ParseFloat(mean, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad mean %q: %w", line, mean, err)
		}
		stations = append(stations, Station{Name: name, Mean: m})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, errors.New("no stations")
	}
	return stations, nil
}

func estimateFileSize(stations []Station, rows int) string {
	nameBytes := 0
	for _, s := range stations {
		nameBytes += len(s.Name)
	}
	// ";" + "-?d?d.d" averages close to 4.4 bytes, plus the newline
	lineLen := float64(nameBytes)/float64(len(stations)) + 6.4
	return fmt.Sprintf("Estimated max file size is: %s.", convertBytes(int(float64(rows)*lineLen)))
}

func convertBytes(num int) string {
	units := []string{"bytes", "KiB", "MiB", "GiB"}
	var i int
	for num >= 1024 && i < len(units)-1 {
		num /= 1024
		i++
	}
	return fmt.Sprintf("%d %s", num, units[i])
}

// sample draws a temperature in tenths around s.Mean, clamped to [-99.9, 99.9].
func sample(s Station, rnd Random) int64 {
	tenths := int64(math.Round((s.Mean + rnd.NormFloat64()*stddev) * 10))
	return min(max(tenths, -maxTenths), maxTenths)
}

func buildTestData(w io.Writer, stations []Station, rows int, rnd Random, logger *slog.Logger) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	for i := 0; i < rows; i++ {
		s := stations[rnd.Intn(len(stations))]
		bw.WriteString(s.Name)
		bw.WriteByte(';')
		bw.WriteString(report.FormatTemperature(sample(s, rnd)))
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
		if i > 0 && i%logInterval == 0 {
			logger.Info("progress", "rows", i)
		}
	}
	return bw.Flush()
}

func run(args []string, stderr io.Writer, clock clockwork.Clock) error {
	fs := flag.NewFlagSet("create_measurements", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "measurements.txt", "output `file`")
	stationsFile := fs.String("stations", "", "station list `file` of name;mean lines (default: built-in list)")
	seed := fs.Int64("seed", 0, "random seed (0 picks one from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rows, err := checkArgs(fs.Args())
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	var src io.Reader = strings.NewReader(defaultStations)
	if *stationsFile != "" {
		f, err := os.Open(*stationsFile)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	stations, err := loadStations(src)
	if err != nil {
		return fmt.Errorf("load stations: %w", err)
	}
	logger.Info(estimateFileSize(stations, rows), "stations", len(stations))

	if *seed == 0 {
		*seed = clock.Now().UnixNano()
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	start := clock.Now()
	if err := buildTestData(f, stations, rows, rand.New(rand.NewSource(*seed)), logger); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("test data written", "file", *out, "rows", rows, "seed", *seed, "elapsed", clock.Since(start))
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stderr, clockwork.NewRealClock()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
