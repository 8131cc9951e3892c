package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleRecord struct {
	ManagerID string `json:"manager_id"`
	Sold      int    `json:"sold_quantity"`
}

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	dir := t.TempDir()
	j, err := New(dir, nil)
	require.NoError(t, err)

	day := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, StreamSales, day, saleRecord{ManagerID: "M1", Sold: 3}))
	require.NoError(t, j.Append(ctx, StreamSales, day.Add(time.Hour), saleRecord{ManagerID: "M1", Sold: 2}))

	path := filepath.Join(dir, "offline_sales_2024-03-09.jsonl")
	assert.Equal(t, path, j.Path(StreamSales, day))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"manager_id\":\"M1\",\"sold_quantity\":3}\n{\"manager_id\":\"M1\",\"sold_quantity\":2}\n", string(raw))

	records, err := j.ReadDay(StreamSales, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	var last saleRecord
	require.NoError(t, json.Unmarshal(records[1], &last))
	assert.Equal(t, 2, last.Sold)
}

func TestAppendSeparatesStreamsAndDays(t *testing.T) {
	j, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()
	d1 := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	d2 := d1.Add(2 * time.Hour)

	require.NoError(t, j.Append(ctx, StreamSales, d1, saleRecord{Sold: 1}))
	require.NoError(t, j.Append(ctx, StreamOrders, d1, map[string]string{"order_id": "o-1"}))
	require.NoError(t, j.Append(ctx, StreamSales, d2, saleRecord{Sold: 4}))

	for _, tc := range []struct {
		stream string
		day    time.Time
		want   int
	}{
		{StreamSales, d1, 1},
		{StreamSales, d2, 1},
		{StreamOrders, d1, 1},
		{StreamOrders, d2, 0},
	} {
		records, err := j.ReadDay(tc.stream, tc.day)
		require.NoError(t, err)
		assert.Len(t, records, tc.want, "%s %s", tc.stream, tc.day.Format(dayLayout))
	}
}

func TestConcurrentAppendsKeepEveryRecord(t *testing.T) {
	j, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	day := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, j.Append(context.Background(), StreamOrders, day, saleRecord{Sold: n}))
		}(i)
	}
	wg.Wait()

	records, err := j.ReadDay(StreamOrders, day)
	require.NoError(t, err)
	require.Len(t, records, 50)
	seen := map[int]bool{}
	for _, r := range records {
		var rec saleRecord
		require.NoError(t, json.Unmarshal(r, &rec))
		seen[rec.Sold] = true
	}
	assert.Len(t, seen, 50)
}

func TestAppendFailsWhenDirIsGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	j, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o644))

	err = j.Append(context.Background(), StreamSales, time.Now(), saleRecord{})
	require.Error(t, err)
}

func TestAppendRejectsUnencodableRecord(t *testing.T) {
	j, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	err = j.Append(context.Background(), StreamSales, time.Now(), map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New("", nil)
	require.Error(t, err)
}
