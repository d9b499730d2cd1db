package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-data-explorer/internal/model"
)

var heartHeader = strings.Join(model.HeartStudySchema.Names(), ",")

const heartRows = `1,39,4,0,0,0,0,0,0,195,106,70,26.97,80,77,0
0,46,2,0,0,0,0,0,0,250,121,81,28.73,95,76,0
1,48,1,1,20,0,0,0,0,245,127.5,80,25.34,75,70,0
0,61,3,1,30,0,0,1,0,225,150,95,28.58,65,103,1
0,46,3,1,23,0,0,0,0,285,130,84,23.1,85,85,0
0,43,2,0,0,0,0,1,0,228,180,110,30.3,77,99,0
0,63,1,0,0,0,0,0,0,205,138,71,33.11,60,85,1
0,45,2,1,20,0,0,0,0,313,100,71,21.68,79,78,0
1,52,1,0,0,0,0,1,0,260,141.5,89,26.36,76,79,0
1,43,1,1,30,0,0,1,0,225,162,107,23.61,93,88,0
0,50,1,0,0,0,0,0,0,254,133,76,22.91,75,,0
0,43,2,0,0,0,0,0,0,247,131,88,27.64,72,61,0
1,46,1,1,15,0,0,1,0,294,142,94,26.31,98,64,0
0,41,3,0,0,1,0,1,0,332,124,88,31.31,65,84,0
0,39,2,1,9,0,0,0,0,226,114,64,22.35,85,NA,0
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func heartLoader() *Loader {
	l := NewLoader(model.HeartStudySchema, quietLogger())
	l.Retry = model.RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
	return l
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadHeartCSV(t *testing.T) {
	path := writeFile(t, "framingham.csv", heartHeader+"\n"+heartRows)

	res, err := heartLoader().Load(context.Background(), model.Source{URL: path})
	require.NoError(t, err)

	assert.Equal(t, model.Stats{TotalRows: 15, TotalColumns: 16}, res.Stats)
	assert.Equal(t, model.HeartStudySchema.Names(), res.Data.Header)
	assert.Equal(t, 2, res.Missing["glucose"], "empty field and NA are both absent")
	assert.Equal(t, 2, res.Missing.Total())
	assert.Len(t, res.Head.Records, PreviewRows)
	assert.Len(t, res.Tail.Records, PreviewRows)

	first := res.Data.Records[0]
	assert.Equal(t, model.Number(39), first["age"])
	assert.Equal(t, model.Number(26.97), first["BMI"])
	assert.Equal(t, model.Number(0), first["currentSmoker"], "zero stays a number")
	assert.Equal(t, model.Number(127.5), res.Data.Records[2]["sysBP"])

	lastAge, _ := res.Tail.Records[PreviewRows-1]["age"].Float()
	assert.Equal(t, 39.0, lastAge)
}

func TestLoadMissingSourceYieldsEmptyDataset(t *testing.T) {
	res, err := heartLoader().Load(context.Background(), model.Source{URL: filepath.Join(t.TempDir(), "nope.csv")})
	require.NoError(t, err)

	assert.Equal(t, model.Stats{}, res.Stats)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Head.Records)
	assert.Empty(t, res.Tail.Records)
	assert.Equal(t, model.HeartStudySchema.Names(), res.Data.Header)
}

func TestLoadCancelled(t *testing.T) {
	path := writeFile(t, "framingham.csv", heartHeader+"\n"+heartRows)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := heartLoader().Load(ctx, model.Source{URL: path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCoercion(t *testing.T) {
	// BOM and quotes on the header, an unknown column, columns out of order and
	// most schema columns missing from the file
	input := "\ufeff\"age\", BMI ,note,glucose\n" +
		" 40 ,abc,hello,\n" +
		"\n" +
		"0,22.5,x,1e2\n" +
		"55\n"

	ds, err := heartLoader().Parse(context.Background(), strings.NewReader(input), "csv")
	require.NoError(t, err)
	require.Len(t, ds.Records, 3, "blank line skipped")

	first := ds.Records[0]
	assert.Len(t, first, 16, "records carry exactly the schema columns")
	assert.Equal(t, model.Number(40), first["age"])
	assert.True(t, first["BMI"].IsNull(), "unparseable number is absent")
	assert.True(t, first["glucose"].IsNull())
	assert.True(t, first["heartRate"].IsNull(), "column not in the file is absent")
	_, hasNote := first["note"]
	assert.False(t, hasNote)

	assert.Equal(t, model.Number(0), ds.Records[1]["age"])
	assert.Equal(t, model.Number(100), ds.Records[1]["glucose"])
	assert.True(t, ds.Records[2]["BMI"].IsNull(), "ragged row")
}

func TestParseGeneric(t *testing.T) {
	l := NewLoader(nil, quietLogger())
	ds, err := l.Parse(context.Background(), strings.NewReader("name,score,ratio\nann,3,0.5\nbob,,x\n"), "csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score", "ratio"}, ds.Header)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, model.String("ann"), ds.Records[0]["name"])
	assert.Equal(t, model.Number(3), ds.Records[0]["score"])
	assert.Equal(t, model.Number(0.5), ds.Records[0]["ratio"])
	assert.True(t, ds.Records[1]["score"].IsNull())
	assert.Equal(t, model.String("x"), ds.Records[1]["ratio"])
	assert.Equal(t, model.MissingReport{"name": 0, "score": 1, "ratio": 0}, ComputeMissing(ds))
}

func TestParseInfinityIsAbsent(t *testing.T) {
	input := "BMI,age,glucose\ninf,40,Infinity\n,50,-Inf\n30,60,1e400\n"

	ds, err := heartLoader().Parse(context.Background(), strings.NewReader(input), "csv")
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.True(t, ds.Records[0]["BMI"].IsNull())
	assert.True(t, ds.Records[0]["glucose"].IsNull())
	assert.True(t, ds.Records[1]["glucose"].IsNull())
	assert.True(t, ds.Records[2]["glucose"].IsNull(), "overflow is not a number either")

	filled := ApplyStrategy(ds, model.StrategyFillMean)
	assert.Equal(t, model.Number(30), filled.Records[0]["BMI"])
	assert.Equal(t, model.Number(30), filled.Records[1]["BMI"])
	assert.Equal(t, model.Number(0), filled.Records[0]["glucose"])
	assert.Zero(t, ComputeMissing(filled).Total())

	generic, err := NewLoader(nil, quietLogger()).Parse(context.Background(), strings.NewReader("x\ninf\n"), "csv")
	require.NoError(t, err)
	assert.Equal(t, model.String("inf"), generic.Records[0]["x"])
	_, ok := generic.Records[0]["x"].Float()
	assert.False(t, ok)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := heartLoader().Parse(context.Background(), strings.NewReader(""), "parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseEmptyCSV(t *testing.T) {
	ds, err := heartLoader().Parse(context.Background(), strings.NewReader(""), "csv")
	require.NoError(t, err)
	assert.Empty(t, ds.Records)
}

func heartWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{}
	for _, name := range model.HeartStudySchema.Names() {
		header = append(header, name)
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 39, 4, 0, 0, 0, 0, 0, 0, 195, 106, 70, 26.97, 80, 77, 0}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{0, 46, 2, 0, 0, 0, 0, 0, 0, 250, 121, 81, 28.73, 95}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heart.xlsx")
	require.NoError(t, os.WriteFile(path, heartWorkbook(t), 0644))

	res, err := heartLoader().Load(context.Background(), model.Source{URL: path})
	require.NoError(t, err)

	assert.Equal(t, model.Stats{TotalRows: 2, TotalColumns: 16}, res.Stats)
	assert.Equal(t, model.Number(26.97), res.Data.Records[0]["BMI"])
	assert.Equal(t, 1, res.Missing["glucose"], "short row")
	assert.Equal(t, 1, res.Missing["TenYearCHD"])
	assert.Equal(t, 2, res.Missing.Total())
}

func TestLoadFromURLRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, heartHeader+"\n"+heartRows)
	}))
	defer srv.Close()

	res, err := heartLoader().Load(context.Background(), model.Source{URL: srv.URL + "/framingham.csv"})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Stats.TotalRows)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLoadFromURLDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res, err := heartLoader().Load(context.Background(), model.Source{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.TotalRows)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoadFromURLGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := heartLoader().Load(context.Background(), model.Source{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.TotalRows)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "first attempt plus two retries")
}

func TestNextRetryDelay(t *testing.T) {
	cfg := model.RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, nextRetryDelay(cfg, 1))
	assert.Equal(t, 400*time.Millisecond, nextRetryDelay(cfg, 3))
	assert.Equal(t, time.Second, nextRetryDelay(cfg, 10))

	cfg.BackoffFactor = 0
	assert.Equal(t, 100*time.Millisecond, nextRetryDelay(cfg, 4))
}

func TestSourceFormat(t *testing.T) {
	assert.Equal(t, "xlsx", sourceFormat(model.Source{URL: "data/heart.XLSX"}))
	assert.Equal(t, "xlsx", sourceFormat(model.Source{URL: "https://host/heart.xlsx?raw=1"}))
	assert.Equal(t, "csv", sourceFormat(model.Source{URL: "heart.csv"}))
	assert.Equal(t, "csv", sourceFormat(model.Source{URL: "heart"}))
	assert.Equal(t, "xlsx", sourceFormat(model.Source{URL: "heart.bin", Type: "XLSX"}))
}
