package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpug.it/1brc/internal/chunk"
	"xpug.it/1brc/internal/config"
	"xpug.it/1brc/internal/observability"
	"xpug.it/1brc/internal/record"
	"xpug.it/1brc/internal/source"
	"xpug.it/1brc/internal/station"
)

type fakePublisher struct {
	published station.Global
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, g station.Global) error {
	if f.err != nil {
		return f.err
	}
	f.published = g
	return nil
}

func writeMeasurements(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "measurements.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(cfg *config.Config, stdout io.Writer) *app {
	return &app{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   clockwork.NewFakeClock(),
		metrics: observability.NewMetrics(),
		stdout:  stdout,
	}
}

func testConfig(kind string, chunks int) *config.Config {
	return &config.Config{ChunkCount: chunks, Workers: 4, Source: kind, LogLevel: "info", LogFormat: "text"}
}

func TestRun_Scenario(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\nHamburg;8.0\nBerlin;-3.5\n")

	for _, kind := range []string{source.Mmap, source.MmapReader, source.Pread} {
		t.Run(kind, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, newTestApp(testConfig(kind, 1), &out).run(context.Background(), path))
			assert.Equal(t, "{Berlin=-3.5/-3.5/-3.5, Hamburg=8.0/10.0/12.0}\nTime elapsed = 0s\n", out.String())
		})
	}
}

func TestRun_ManyIdenticalRecords(t *testing.T) {
	path := writeMeasurements(t, strings.Repeat("X;5.0\n", 1_000_000))

	var out bytes.Buffer
	a := newTestApp(testConfig(source.Mmap, 8), &out)
	require.NoError(t, a.run(context.Background(), path))

	assert.True(t, strings.HasPrefix(out.String(), "{X=5.0/5.0/5.0}\n"), out.String())
}

func TestRun_ChunkCountDoesNotChangeOutput(t *testing.T) {
	var b strings.Builder
	names := []string{"Abha", "Accra", "Addis Ababa", "Adelaide", "Aden", "Ahvaz", "Albuquerque", "Alexandra"}
	for i := 0; i < 40_000; i++ {
		tenths := (i*7919)%1999 - 999
		b.WriteString(names[(i*31)%len(names)])
		b.WriteByte(';')
		if tenths < 0 {
			b.WriteByte('-')
			tenths = -tenths
		}
		b.WriteString(strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10) + "\n")
	}
	path := writeMeasurements(t, b.String())

	var want bytes.Buffer
	require.NoError(t, newTestApp(testConfig(source.Mmap, 1), &want).run(context.Background(), path))
	for _, n := range []int{2, 5, 16, 64} {
		var got bytes.Buffer
		require.NoError(t, newTestApp(testConfig(source.Pread, n), &got).run(context.Background(), path))
		assert.Equal(t, want.String(), got.String(), "%d chunks", n)
	}
}

func TestRun_EmptyFile(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestApp(testConfig(source.Mmap, 4), &out).run(context.Background(), writeMeasurements(t, "")))
	assert.Equal(t, "{}\nTime elapsed = 0s\n", out.String())
}

func TestRun_MalformedRecordPrintsNothing(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\nBerlin;cold\n")

	var out bytes.Buffer
	err := newTestApp(testConfig(source.Mmap, 1), &out).run(context.Background(), path)

	var fe *record.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(13), fe.Offset)
	assert.Empty(t, out.String())
}

func TestRun_RecordLongerThanLookahead(t *testing.T) {
	path := writeMeasurements(t, strings.Repeat("x", 4096)+";1.0\n")

	var out bytes.Buffer
	err := newTestApp(testConfig(source.Mmap, 4), &out).run(context.Background(), path)
	require.ErrorIs(t, err, chunk.ErrNoTerminator)
	assert.Empty(t, out.String())
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(testConfig(source.Mmap, 4), &out).run(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String())
}

func TestRun_WritesMetricsTextfile(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\nHamburg;8.0\nBerlin;-3.5\n")
	cfg := testConfig(source.Mmap, 1)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "brc.prom")

	require.NoError(t, newTestApp(cfg, io.Discard).run(context.Background(), path))

	prom, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "brc_rows_total 3")
	assert.Contains(t, string(prom), "brc_stations 2")
	assert.Contains(t, string(prom), "brc_chunks 1")
}

func TestRun_Publishes(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\nBerlin;-3.5\n")
	pub := &fakePublisher{}

	a := newTestApp(testConfig(source.Mmap, 1), io.Discard)
	a.publisher = pub
	require.NoError(t, a.run(context.Background(), path))

	require.Len(t, pub.published, 2)
	assert.Equal(t, station.Stats{Min: 120, Max: 120, Sum: 120, Count: 1}, *pub.published["Hamburg"])
}

func TestRun_PublishErrorPrintsNothing(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\n")
	brokerErr := errors.New("leader not available")

	var out bytes.Buffer
	a := newTestApp(testConfig(source.Mmap, 1), &out)
	a.publisher = &fakePublisher{err: brokerErr}

	require.ErrorIs(t, a.run(context.Background(), path), brokerErr)
	assert.Empty(t, out.String())
}

func TestRealMain_MissingArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, realMain(nil, &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "missing measurements file name")
}

func TestRealMain_Success(t *testing.T) {
	path := writeMeasurements(t, "Hamburg;12.0\nHamburg;8.0\nBerlin;-3.5\n")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, realMain([]string{path}, &stdout, &stderr), stderr.String())

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "{Berlin=-3.5/-3.5/-3.5, Hamburg=8.0/10.0/12.0}", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Time elapsed = "), lines[1])
}

func TestRealMain_Failure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, realMain([]string{filepath.Join(t.TempDir(), "missing.txt")}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "calculate averages failed")
}

func TestRealMain_InvalidConfig(t *testing.T) {
	t.Setenv("SOURCE", "tape")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, realMain([]string{"measurements.txt"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "SOURCE")
}
